//go:generate go run go.uber.org/mock/mockgen -source=settings.go -destination=../mocks/mock_settings_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

type ISettingsRepository interface {
	GetTopic() (Topic, error)
	SetTopic(topic Topic) error
}

// Topic is the room's daily subject shown to connecting clients.
type Topic struct {
	Title string `json:"title"`
	Rules string `json:"rules"`
}

type SettingsRepository struct {
	db       *badger.DB
	defaults Topic
}

// NewSettingsRepository returns a repository that falls back to the given
// defaults until an admin persists a topic.
func NewSettingsRepository(db *badger.DB, defaults Topic) SettingsRepository {
	return SettingsRepository{db: db, defaults: defaults}
}

var topicKey = []byte("settings:topic")

func (s SettingsRepository) GetTopic() (Topic, error) {
	var topic Topic
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(topicKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &topic)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return s.defaults, nil
	}
	if err != nil {
		return Topic{}, err
	}
	return topic, nil
}

// SetTopic persists the topic so admin updates survive restarts, unlike
// a process-environment override.
func (s SettingsRepository) SetTopic(topic Topic) error {
	data, err := json.Marshal(topic)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(topicKey, data)
	})
}
