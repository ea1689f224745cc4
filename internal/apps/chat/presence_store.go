package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/presence"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/session"
	"github.com/go-redis/redis/v8"
)

const (
	presenceKey     = "mindspace:presence"
	presenceChannel = "mindspace:presence:changed"
)

// PresenceStore keeps one presence record per member in a Redis hash and
// announces every write on a pub/sub channel.
type PresenceStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewPresenceStore(rdb *redis.Client) *PresenceStore {
	return &PresenceStore{rdb: rdb, now: time.Now}
}

func (s *PresenceStore) Heartbeat(ctx context.Context, v session.Viewer, photoURL string) (presence.Record, error) {
	rec := presence.Record{
		ParticipantID: v.ID(),
		Online:        true,
		LastSeenAt:    s.now().UTC(),
		Role:          presence.Role(v.Role),
		DisplayName:   v.DisplayName,
		PhotoURL:      photoURL,
	}
	return rec, s.put(ctx, rec)
}

// SetOffline marks the member offline, keeping their profile fields.
func (s *PresenceStore) SetOffline(ctx context.Context, v session.Viewer) (presence.Record, error) {
	rec := presence.Record{
		ParticipantID: v.ID(),
		Role:          presence.Role(v.Role),
		DisplayName:   v.DisplayName,
	}
	prev, ok, err := s.get(ctx, v.ID())
	if err != nil {
		return rec, err
	}
	if ok {
		rec.PhotoURL = prev.PhotoURL
	}
	rec.LastSeenAt = s.now().UTC()
	return rec, s.put(ctx, rec)
}

// All returns every stored record. Undecodable entries are skipped.
func (s *PresenceStore) All(ctx context.Context) ([]presence.Record, error) {
	raw, err := s.rdb.HGetAll(ctx, presenceKey).Result()
	if err != nil {
		return nil, fmt.Errorf("read presence: %w", err)
	}

	records := make([]presence.Record, 0, len(raw))
	for id, v := range raw {
		var rec presence.Record
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			slog.Warn("skipping unreadable presence record", "component", "chat", "user_id", id, "error", err.Error())
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Changes delivers a signal for every presence write until ctx is done.
func (s *PresenceStore) Changes(ctx context.Context) (<-chan struct{}, error) {
	sub := s.rdb.Subscribe(ctx, presenceChannel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe presence: %w", err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}

func (s *PresenceStore) get(ctx context.Context, id string) (presence.Record, bool, error) {
	v, err := s.rdb.HGet(ctx, presenceKey, id).Result()
	if err == redis.Nil {
		return presence.Record{}, false, nil
	}
	if err != nil {
		return presence.Record{}, false, err
	}
	var rec presence.Record
	if err := json.Unmarshal([]byte(v), &rec); err != nil {
		return presence.Record{}, false, nil
	}
	return rec, true, nil
}

func (s *PresenceStore) put(ctx context.Context, rec presence.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, presenceKey, rec.ParticipantID, b)
		p.Publish(ctx, presenceChannel, rec.ParticipantID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("write presence: %w", err)
	}
	return nil
}
