package workers

import (
	"context"
	"log/slog"
	"time"

	"daily-chat/domain"
	"daily-chat/repositories"
)

const resetNotice = "Messages have been cleared for a new day!"

// resetWindow is how far past midnight the rollover may still fire.
// Beyond it the reset waits for the next day; a poll loop stalled past
// five minutes skips a day, which is a known limitation.
const resetWindow = 5 * time.Minute

// Notifier announces the reset to every connected client.
type Notifier interface {
	System(text string)
}

// DayPurger maintains a secondary corpus partitioned by day key.
type DayPurger interface {
	DeleteByDay(ctx context.Context, dayKey string) error
}

// DailyResetWorker clears yesterday's messages shortly after midnight.
// lastClearDate is mutated only here; the update happens right after a
// successful delete, which is what makes repeated polls within the same
// rollover idempotent.
type DailyResetWorker struct {
	log           *slog.Logger
	messages      repositories.IMessageRepository
	purger        DayPurger
	notifier      Notifier
	pollInterval  time.Duration
	now           func() time.Time
	lastClearDate time.Time
}

func NewDailyResetWorker(
	log *slog.Logger,
	messages repositories.IMessageRepository,
	purger DayPurger,
	notifier Notifier,
	pollInterval time.Duration,
	clock func() time.Time,
) *DailyResetWorker {
	if clock == nil {
		clock = time.Now
	}
	return &DailyResetWorker{
		log:           log,
		messages:      messages,
		purger:        purger,
		notifier:      notifier,
		pollInterval:  pollInterval,
		now:           clock,
		lastClearDate: clock(),
	}
}

func (w *DailyResetWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// tick performs at most one reset per day rollover. A store failure is
// logged and retried on the next poll without advancing lastClearDate.
func (w *DailyResetWorker) tick(ctx context.Context) {
	now := w.now()
	if sameDay(now, w.lastClearDate) {
		return
	}
	if sinceMidnight(now) >= resetWindow {
		return
	}

	previousKey := domain.DayKeyFor(w.lastClearDate)
	deleted, err := w.messages.DeleteByDay(previousKey)
	if err != nil {
		w.log.Error("Daily reset delete failed, will retry", "day", previousKey, "error", err)
		return
	}

	if w.purger != nil {
		if err := w.purger.DeleteByDay(ctx, previousKey); err != nil {
			w.log.Warn("Search purge failed", "day", previousKey, "error", err)
		}
	}

	w.lastClearDate = now
	w.log.Info("Messages cleared at midnight", "day", previousKey, "deleted", deleted)
	w.notifier.System(resetNotice)
}

func sameDay(a, b time.Time) bool {
	return domain.DayKeyFor(a) == domain.DayKeyFor(b)
}

func sinceMidnight(t time.Time) time.Duration {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return t.Sub(midnight)
}
