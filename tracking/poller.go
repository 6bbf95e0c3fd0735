package tracking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Poller refreshes an Engine on a fixed interval until its context is
// cancelled. Failed cycles are logged and the loop keeps going.
type Poller struct {
	engine   *Engine
	interval time.Duration
	log      *zap.Logger
}

func NewPoller(engine *Engine, interval time.Duration) *Poller {
	return &Poller{
		engine:   engine,
		interval: interval,
		log:      zap.L().Named("poller"),
	}
}

// Run blocks. Refreshes never force a viewport reset; the engine fits the
// viewport on its own first data-bearing cycle.
func (p *Poller) Run(ctx context.Context) {
	p.refresh(ctx, false)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.log.Info("poller stopped")
			return
		case <-ticker.C:
			p.refresh(ctx, false)
		}
	}
}

func (p *Poller) refresh(ctx context.Context, resetView bool) {
	start := time.Now()
	err := p.engine.Refresh(ctx, resetView)
	switch {
	case err == nil:
		p.log.Debug("refresh done", zap.Duration("elapsed", time.Since(start)))
	case errors.Is(err, ErrRefreshInFlight):
		p.log.Debug("refresh skipped, previous still running")
	case errors.Is(err, context.Canceled):
	default:
		p.log.Warn("refresh failed", zap.Error(err))
	}
}
