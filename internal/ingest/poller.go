package ingest

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"trainmap.dev/internal/config"
	"trainmap.dev/internal/metrics"
	"trainmap.dev/internal/models"
)

// CycleRunner runs one ingestion cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) ([]models.VehiclePosition, error)
}

// Publisher receives the positions of every successful cycle.
type Publisher interface {
	Publish(ctx context.Context, feedID string, positions []models.VehiclePosition) error
}

// Poller calls a CycleRunner at a fixed interval and keeps the latest outcome.
//
// After a failed cycle the feed backs off with jittered exponential delays;
// ticks inside the backoff window are skipped. A successful cycle clears it.
type Poller struct {
	Runner         CycleRunner
	Snapshots      *SnapshotStore
	Backoff        *config.BackoffStore
	Publisher      Publisher // optional
	FeedID         string
	Interval       time.Duration
	DropUnresolved bool
	Logger         *slog.Logger
}

func NewPoller(runner CycleRunner, snapshots *SnapshotStore, feedID string, interval time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		Runner:    runner,
		Snapshots: snapshots,
		Backoff:   config.NewBackoffStore(),
		FeedID:    feedID,
		Interval:  interval,
		Logger:    logger,
	}
}

// Run polls once immediately and then on every tick until ctx is done.
// Ticks that fire while a cycle is running are dropped.
func (p *Poller) Run(ctx context.Context) {
	p.Poll(ctx)

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.Logger.Info("Stopping ingestion poller", "feed_id", p.FeedID)
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll runs one cycle unless the feed is backing off and stores its outcome.
// It reports whether a cycle ran.
func (p *Poller) Poll(ctx context.Context) bool {
	if p.Backoff.ShouldSkip(p.FeedID) {
		metrics.SkippedCycles.WithLabelValues(p.FeedID).Inc()
		if next, ok := p.Backoff.NextRetryAt(p.FeedID); ok {
			p.Logger.Debug("Skipping ingestion cycle during backoff", "feed_id", p.FeedID, "next_retry_at", next)
		}
		return false
	}

	positions, err := p.Runner.RunCycle(ctx)
	if err != nil && ctx.Err() != nil {
		// Shutting down; keep the last outcome.
		return true
	}

	snapshot := &Snapshot{FeedID: p.FeedID, CompletedAt: time.Now()}
	if err != nil {
		p.Backoff.UpdateBackoff(p.FeedID)
		snapshot.Err = err
		p.Snapshots.Set(snapshot)
		return true
	}
	p.Backoff.ResetBackoff(p.FeedID)

	if p.DropUnresolved {
		positions = slices.DeleteFunc(positions, func(v models.VehiclePosition) bool {
			return !v.Resolved()
		})
	}
	snapshot.Positions = positions
	p.Snapshots.Set(snapshot)

	if p.Publisher != nil {
		if err := p.Publisher.Publish(ctx, p.FeedID, positions); err != nil {
			p.Logger.Warn("Failed to publish positions", "feed_id", p.FeedID, "error", err)
		}
	}
	return true
}
