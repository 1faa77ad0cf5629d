package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/folio/internal/common"
)

// scheduler runs the background price refresh on the configured cron
// schedule. A tick that finds the previous refresh still in flight simply
// issues a new one; the store's epoch handling discards the superseded
// batch.
type scheduler struct {
	app  *App
	cron *cron.Cron
}

func newScheduler(a *App) (*scheduler, error) {
	c := cron.New()

	spec := a.Config.Portfolio.RefreshSchedule
	if _, err := c.AddFunc(spec, func() { refreshTick(a) }); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}

	return &scheduler{app: a, cron: c}, nil
}

func (s *scheduler) start() {
	s.cron.Start()
	s.app.Logger.Info().
		Str("schedule", s.app.Config.Portfolio.RefreshSchedule).
		Msg("Price refresh scheduler started")
}

func (s *scheduler) stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.app.Logger.Warn().Msg("Scheduler jobs still running at shutdown")
	}
	s.app.Logger.Info().Msg("Price refresh scheduler stopped")
}

func refreshTick(a *App) {
	snap := a.Store.Snapshot()
	if len(snap.Holdings) == 0 {
		return
	}

	// Skip the fetch when every price is still fresh, e.g. right after a
	// manual refresh.
	stale := false
	for _, h := range snap.Holdings {
		if !common.IsFresh(h.PriceUpdatedAt, common.FreshnessQuote) {
			stale = true
			break
		}
	}
	if !stale {
		return
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := a.Store.RefreshPrices(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Scheduled price refresh failed")
		return
	}

	a.Logger.Info().
		Dur("elapsed", time.Since(start)).
		Msg("Scheduled price refresh complete")
}
