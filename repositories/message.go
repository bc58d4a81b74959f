//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"daily-chat/domain"
	apperrors "daily-chat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	Store(msg domain.Message) error
	GetByDay(dayKey string) ([]domain.Message, error)
	CountByDay(dayKey string) (int, error)
	Count() (int, error)
	GetAll(offset, limit int) ([]domain.Message, error)
	DeleteByDay(dayKey string) (int, error)
	DeleteByID(id uuid.UUID) error
	DeleteAll() (int, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

const messagePrefix = "msg:"

// messageKey formats "msg:{dayKey}:{timestamp_padded}:{uuid}" so that:
//  1. A prefix scan over one day key yields that day's messages only.
//  2. The 19-digit zero-padded nanosecond timestamp makes lexicographical
//     order match chronological order.
//  3. The UUID disambiguates two messages arriving at the same nanosecond.
func messageKey(msg domain.Message) []byte {
	return []byte(fmt.Sprintf("%s%s:%019d:%s",
		messagePrefix,
		msg.DayKey,
		msg.CreatedAt.UnixNano(),
		msg.ID,
	))
}

func dayPrefix(dayKey string) []byte {
	return []byte(messagePrefix + dayKey + ":")
}

// Store persists a message. Each call is a single Badger transaction;
// callers may treat it as atomic.
func (m MessageRepository) Store(msg domain.Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(msg), value)
	})
}

// GetByDay returns all messages of the given day in CreatedAt ascending
// order. Forward iteration over the padded key schema gives that order
// without sorting.
func (m MessageRepository) GetByDay(dayKey string) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		prefix := dayPrefix(dayKey)
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var msg domain.Message
				if err := json.Unmarshal(val, &msg); err != nil {
					return err
				}
				messages = append(messages, msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return messages, err
}

// CountByDay counts the day's messages with a keys-only scan.
func (m MessageRepository) CountByDay(dayKey string) (int, error) {
	return m.countPrefix(dayPrefix(dayKey))
}

// Count counts every stored message regardless of day.
func (m MessageRepository) Count() (int, error) {
	return m.countPrefix([]byte(messagePrefix))
}

func (m MessageRepository) countPrefix(prefix []byte) (int, error) {
	count := 0
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// GetAll returns messages across all days, newest first, with skip/limit
// pagination for the admin listing.
func (m MessageRepository) GetAll(offset, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek just past the message keyspace, then walk backwards.
		seekKey := append([]byte(messagePrefix), 0xFF)
		skipped := 0
		for it.Seek(seekKey); it.ValidForPrefix([]byte(messagePrefix)); it.Next() {
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && len(messages) >= limit {
				return nil
			}
			err := it.Item().Value(func(val []byte) error {
				var msg domain.Message
				if err := json.Unmarshal(val, &msg); err != nil {
					return err
				}
				messages = append(messages, msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return messages, err
}

// DeleteByDay removes every message of the given day and returns how many
// were deleted. The daily reset worker calls this with yesterday's key.
func (m MessageRepository) DeleteByDay(dayKey string) (int, error) {
	return m.deletePrefix(dayPrefix(dayKey))
}

// DeleteAll wipes the whole message keyspace and returns the count.
func (m MessageRepository) DeleteAll() (int, error) {
	return m.deletePrefix([]byte(messagePrefix))
}

func (m MessageRepository) deletePrefix(prefix []byte) (int, error) {
	deleted := 0
	err := m.db.Update(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// DeleteByID removes one message by its identifier. The key embeds day and
// timestamp, so a keys-only scan matches on the UUID suffix. The keyspace
// stays small because of the daily reset.
func (m MessageRepository) DeleteByID(id uuid.UUID) error {
	suffix := ":" + id.String()
	found := false
	err := m.db.Update(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = []byte(messagePrefix)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek([]byte(messagePrefix)); it.ValidForPrefix([]byte(messagePrefix)); it.Next() {
			key := it.Item().KeyCopy(nil)
			if strings.HasSuffix(string(key), suffix) {
				found = true
				return txn.Delete(key)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !found {
		return apperrors.ErrMessageNotFound
	}
	return nil
}
