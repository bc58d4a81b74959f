// Package search maintains a Bluge full-text index over chat messages so
// admins can search a day's conversation. Indexing is best effort and
// never blocks or fails the message flow.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"daily-chat/domain"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

// Result is one search hit, light enough to return without a store lookup.
type Result struct {
	ID        uuid.UUID `json:"id"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
	Timestamp string    `json:"timestamp"`
}

func Open(path string, log *slog.Logger) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	return &Index{writer: writer, log: log}, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}

// Add indexes a message under its UUID. Re-adding the same id replaces
// the previous document.
func (i *Index) Add(msg domain.Message) error {
	doc := bluge.NewDocument(msg.ID.String()).
		AddField(bluge.NewKeywordField("day_key", msg.DayKey).StoreValue()).
		AddField(bluge.NewTextField("user", msg.User).StoreValue()).
		AddField(bluge.NewTextField("text", msg.Text).StoreValue()).
		AddField(bluge.NewKeywordField("timestamp", msg.CreatedAt.Format(time.RFC3339)).StoreValue())
	return i.writer.Update(doc.ID(), doc)
}

// Delete removes one message from the index.
func (i *Index) Delete(id uuid.UUID) error {
	return i.writer.Delete(bluge.Identifier(id.String()))
}

// Search matches the query against message text, restricted to one day,
// newest-relevance first, capped at limit hits.
func (i *Index) Search(ctx context.Context, query, dayKey string, limit int) ([]Result, error) {
	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(query).SetField("text")).
		AddMust(bluge.NewTermQuery(dayKey).SetField("day_key"))

	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	iter, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, err
	}

	var results []Result
	match, err := iter.Next()
	for err == nil && match != nil {
		var hit Result
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.ID, _ = uuid.Parse(string(value))
			case "user":
				hit.User = string(value)
			case "text":
				hit.Text = string(value)
			case "timestamp":
				hit.Timestamp = string(value)
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		results = append(results, hit)
		match, err = iter.Next()
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteByDay drops every indexed document of the given day. The daily
// reset calls this alongside the store deletion.
func (i *Index) DeleteByDay(ctx context.Context, dayKey string) error {
	return i.deleteMatching(ctx, bluge.NewTermQuery(dayKey).SetField("day_key"))
}

// DeleteAll empties the index, mirroring the admin clear-messages action.
func (i *Index) DeleteAll(ctx context.Context) error {
	return i.deleteMatching(ctx, bluge.NewMatchAllQuery())
}

func (i *Index) deleteMatching(ctx context.Context, q bluge.Query) error {
	reader, err := i.writer.Reader()
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	iter, err := reader.Search(ctx, bluge.NewAllMatches(q))
	if err != nil {
		return err
	}

	match, err := iter.Next()
	for err == nil && match != nil {
		var id string
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				id = string(value)
			}
			return true
		})
		if visitErr != nil {
			return visitErr
		}
		if id != "" {
			if err := i.writer.Delete(bluge.Identifier(id)); err != nil {
				return err
			}
		}
		match, err = iter.Next()
	}
	return err
}
