package repositories

import (
	"log/slog"
	"testing"
	"time"

	"daily-chat/domain"
	apperrors "daily-chat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newMessage(user, text string, at time.Time) domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		User:      user,
		Text:      text,
		CreatedAt: at,
		DayKey:    domain.DayKeyFor(at),
	}
}

func Test_Store_And_Get_By_Day_Ordered(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	day := time.Date(2026, 8, 28, 8, 0, 0, 0, time.Local)
	m1 := newMessage("Alice", "first", day)
	m2 := newMessage("Bob", "second", day.Add(time.Hour))
	m3 := newMessage("Clara", "third", day.Add(2*time.Hour))

	// Insert out of order; the padded key schema restores chronology.
	for _, msg := range []domain.Message{m3, m1, m2} {
		req.NoError(repository.Store(msg))
	}

	fetched, err := repository.GetByDay(m1.DayKey)
	req.NoError(err)
	req.Len(fetched, 3)
	req.Equal([]string{"first", "second", "third"},
		[]string{fetched[0].Text, fetched[1].Text, fetched[2].Text})
}

func Test_Get_By_Day_Excludes_Other_Days(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	today := time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local)
	yesterday := today.AddDate(0, 0, -1)

	req.NoError(repository.Store(newMessage("Alice", "today", today)))
	req.NoError(repository.Store(newMessage("Bob", "yesterday", yesterday)))

	fetched, err := repository.GetByDay(domain.DayKeyFor(today))
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("today", fetched[0].Text)
}

func Test_Count_By_Day(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	at := time.Date(2026, 8, 28, 10, 0, 0, 0, time.Local)
	req.NoError(repository.Store(newMessage("Alice", "one", at)))
	req.NoError(repository.Store(newMessage("Bob", "two", at.Add(time.Minute))))

	count, err := repository.CountByDay(domain.DayKeyFor(at))
	req.NoError(err)
	req.Equal(2, count)

	count, err = repository.CountByDay("1999-01-01")
	req.NoError(err)
	req.Equal(0, count)
}

func Test_Delete_By_Day(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	today := time.Date(2026, 8, 28, 11, 0, 0, 0, time.Local)
	yesterday := today.AddDate(0, 0, -1)

	req.NoError(repository.Store(newMessage("Alice", "keep", today)))
	req.NoError(repository.Store(newMessage("Bob", "drop", yesterday)))
	req.NoError(repository.Store(newMessage("Clara", "drop too", yesterday)))

	deleted, err := repository.DeleteByDay(domain.DayKeyFor(yesterday))
	req.NoError(err)
	req.Equal(2, deleted)

	remaining, err := repository.GetByDay(domain.DayKeyFor(today))
	req.NoError(err)
	req.Len(remaining, 1)

	gone, err := repository.GetByDay(domain.DayKeyFor(yesterday))
	req.NoError(err)
	req.Empty(gone)
}

func Test_Delete_By_ID(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	at := time.Date(2026, 8, 28, 12, 0, 0, 0, time.Local)
	msg := newMessage("Alice", "target", at)
	req.NoError(repository.Store(msg))
	req.NoError(repository.Store(newMessage("Bob", "bystander", at.Add(time.Minute))))

	req.NoError(repository.DeleteByID(msg.ID))

	remaining, err := repository.GetByDay(msg.DayKey)
	req.NoError(err)
	req.Len(remaining, 1)
	req.Equal("bystander", remaining[0].Text)

	req.ErrorIs(repository.DeleteByID(msg.ID), apperrors.ErrMessageNotFound)
}

func Test_Delete_All(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	at := time.Date(2026, 8, 28, 13, 0, 0, 0, time.Local)
	req.NoError(repository.Store(newMessage("Alice", "one", at)))
	req.NoError(repository.Store(newMessage("Bob", "two", at.AddDate(0, 0, -3))))

	deleted, err := repository.DeleteAll()
	req.NoError(err)
	req.Equal(2, deleted)

	count, err := repository.Count()
	req.NoError(err)
	req.Equal(0, count)
}

func Test_Get_All_Newest_First_With_Pagination(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	at := time.Date(2026, 8, 28, 14, 0, 0, 0, time.Local)
	for i, text := range []string{"oldest", "middle", "newest"} {
		req.NoError(repository.Store(newMessage("Alice", text, at.Add(time.Duration(i)*time.Minute))))
	}

	all, err := repository.GetAll(0, 0)
	req.NoError(err)
	req.Len(all, 3)
	req.Equal("newest", all[0].Text)
	req.Equal("oldest", all[2].Text)

	page, err := repository.GetAll(1, 1)
	req.NoError(err)
	req.Len(page, 1)
	req.Equal("middle", page[0].Text)
}
