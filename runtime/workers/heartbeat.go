package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"daily-chat/domain"
	"daily-chat/hub"
	"daily-chat/repositories"

	"github.com/shirou/gopsutil/process"
)

// HeartbeatWorker periodically logs liveness figures: today's message
// count, connected clients, and the process's own RAM/CPU usage.
// Purely observational; collection errors are logged and skipped.
type HeartbeatWorker struct {
	log      *slog.Logger
	messages repositories.IMessageRepository
	registry *hub.Registry
	interval time.Duration
}

func NewHeartbeatWorker(
	log *slog.Logger,
	messages repositories.IMessageRepository,
	registry *hub.Registry,
	interval time.Duration,
) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, messages: messages, registry: registry, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.beat(p)
		}
	}
}

func (w *HeartbeatWorker) beat(p *process.Process) {
	count, err := w.messages.CountByDay(domain.DayKeyFor(time.Now()))
	if err != nil {
		w.log.Warn("Heartbeat count failed", "error", err)
		return
	}

	rss, cpu := selfStats(p)
	w.log.Info("Server alive",
		"messages_today", count,
		"connected_clients", w.registry.Count(),
		"ram_bytes", rss,
		"cpu_percent", cpu,
	)
}

// selfStats retrieves memory and CPU figures for the given process,
// zeroes when the platform refuses.
func selfStats(p *process.Process) (uint64, float64) {
	var rss uint64
	if memInfo, err := p.MemoryInfo(); err == nil {
		rss = memInfo.RSS
	}
	var cpu float64
	if cpuPercent, err := p.CPUPercent(); err == nil {
		cpu = cpuPercent
	}
	return rss, cpu
}
