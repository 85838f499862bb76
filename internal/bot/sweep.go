package bot

import (
	"context"
	"time"

	"github.com/fishmix/servebot/internal/logger"
	"github.com/fishmix/servebot/internal/store"
)

// Sweeper periodically drops reservations whose grace window has elapsed.
type Sweeper struct {
	store    store.Store
	log      *logger.Logger
	interval time.Duration
	grace    time.Duration
}

func NewSweeper(st store.Store, log *logger.Logger, interval, grace time.Duration) *Sweeper {
	return &Sweeper{store: st, log: log, interval: interval, grace: grace}
}

// Run blocks until the context is canceled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	cutoff := time.Now().Add(-s.grace)
	removed, err := s.store.Sweep(cutoff)
	if err != nil {
		s.log.Error("Reservation sweep failed", logger.Error(err))
		return
	}
	if removed > 0 {
		s.log.Info("Expired reservations removed",
			logger.Action("sweep"), logger.Count(removed))
	}
}
