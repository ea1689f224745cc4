package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/presence"
)

// snapshotSource is what the relay reads presence from.
type snapshotSource interface {
	All(ctx context.Context) ([]presence.Record, error)
	Changes(ctx context.Context) (<-chan struct{}, error)
}

// Relay republishes the full presence picture to a Feed after every change,
// and on a timer so subscribers notice records going stale.
type Relay struct {
	src     snapshotSource
	feed    *presence.Feed
	refresh time.Duration
}

func NewRelay(src snapshotSource, feed *presence.Feed, refresh time.Duration) *Relay {
	if refresh <= 0 {
		refresh = 30 * time.Second
	}
	return &Relay{src: src, feed: feed, refresh: refresh}
}

// Run blocks until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	changes, err := r.src.Changes(ctx)
	if err != nil {
		return err
	}
	r.publish(ctx)

	ticker := time.NewTicker(r.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return ctx.Err()
			}
			r.publish(ctx)
		case <-ticker.C:
			r.publish(ctx)
		}
	}
}

func (r *Relay) publish(ctx context.Context) {
	records, err := r.src.All(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("presence snapshot failed", "component", "chat", "error", err)
		}
		return
	}
	r.feed.Publish(presence.Snapshot(records))
}
