package presence

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot is the full presence picture at one moment. Each one supersedes
// the previous.
type Snapshot []Record

// Handler receives snapshots. The slice is the handler's own copy.
type Handler func(Snapshot)

// Feed fans presence snapshots out to subscribers.
type Feed struct {
	mu     sync.Mutex
	last   Snapshot
	hasAny bool
	nextID int
	subs   map[int]*subscription
}

type subscription struct {
	handler Handler
	active  atomic.Bool
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[int]*subscription)}
}

// Subscribe registers h and immediately replays the latest snapshot, if any.
// The returned func unsubscribes and may be called more than once. Deliveries
// that begin after it returns are dropped.
func (f *Feed) Subscribe(h Handler) (unsubscribe func()) {
	sub := &subscription{handler: h}
	sub.active.Store(true)

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = sub
	last, replay := clone(f.last), f.hasAny
	f.mu.Unlock()

	if replay {
		sub.deliver(last)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.active.Store(false)
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

// Publish replaces the current snapshot and delivers it to every subscriber.
func (f *Feed) Publish(s Snapshot) {
	f.mu.Lock()
	f.last = clone(s)
	f.hasAny = true
	subs := make([]*subscription, 0, len(f.subs))
	for _, sub := range f.subs {
		subs = append(subs, sub)
	}
	f.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(clone(s))
	}
}

// Latest returns a copy of the most recent snapshot.
func (f *Feed) Latest() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return clone(f.last)
}

func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (s *subscription) deliver(snap Snapshot) {
	if s.active.Load() {
		s.handler(snap)
	}
}

func clone(s Snapshot) Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	copy(out, s)
	return out
}

// Watch subscribes to f and hands h the reconciled view for viewerID on every
// snapshot, evaluated against now() at delivery time.
func Watch(f *Feed, viewerID string, window time.Duration, now func() time.Time, h func([]Record)) (unsubscribe func()) {
	if now == nil {
		now = time.Now
	}
	return f.Subscribe(func(s Snapshot) {
		h(Reconcile(s, viewerID, now(), window))
	})
}
