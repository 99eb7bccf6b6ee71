// Package poller drives one feed's fetch-normalize-publish cycle on a
// fixed period. Each feed gets its own Poller; the rail and bus loops
// never interact.
package poller

import (
	"context"
	"time"

	"github.com/patrickford1/cta-tracker/internal/arrivals/cache"
	"github.com/patrickford1/cta-tracker/internal/common/logger"
)

// FetchFunc runs one upstream fetch plus normalization and returns the
// new departure list for the feed.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Notifier receives feed health transitions. Only transitions are
// reported, not every failing cycle.
type Notifier interface {
	FeedDown(feed string, err error) error
	FeedRecovered(feed string) error
}

type Poller[T any] struct {
	name     string
	interval time.Duration
	fetch    FetchFunc[T]
	cell     *cache.Cell[T]
	loc      *time.Location
	logger   logger.Logger
	notifier Notifier

	failing bool
}

func New[T any](name string, interval time.Duration, fetch FetchFunc[T], cell *cache.Cell[T], loc *time.Location, log logger.Logger, notifier Notifier) *Poller[T] {
	return &Poller[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		cell:     cell,
		loc:      loc,
		logger:   log,
		notifier: notifier,
	}
}

// Run polls until ctx is cancelled: one cycle immediately, then one per
// tick. Cycle errors are recorded on the cell and swallowed; the loop
// never gives up.
func (p *Poller[T]) Run(ctx context.Context) {
	p.logger.Info("Starting feed polling", "feed", p.name, "interval", p.interval)

	p.cycle(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Feed polling stopped", "feed", p.name)
			return
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

func (p *Poller[T]) cycle(ctx context.Context) {
	items, err := p.fetch(ctx)
	if err != nil {
		p.cell.Fail(err)
		p.logger.Warn("Refresh cycle failed", "feed", p.name, "error", err)
		if !p.failing {
			p.failing = true
			p.alertDown(err)
		}
		return
	}

	p.cell.Publish(items, time.Now().In(p.loc))
	p.logger.Debug("Refresh cycle complete", "feed", p.name, "count", len(items))
	if p.failing {
		p.failing = false
		p.alertRecovered()
	}
}

func (p *Poller[T]) alertDown(err error) {
	if p.notifier == nil {
		return
	}
	if nerr := p.notifier.FeedDown(p.name, err); nerr != nil {
		p.logger.Warn("Failed to send feed-down alert", "feed", p.name, "error", nerr)
	}
}

func (p *Poller[T]) alertRecovered() {
	if p.notifier == nil {
		return
	}
	if nerr := p.notifier.FeedRecovered(p.name); nerr != nil {
		p.logger.Warn("Failed to send feed-recovered alert", "feed", p.name, "error", nerr)
	}
}
