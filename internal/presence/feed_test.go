package presence

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_DeliversLatestSnapshotWholesale(t *testing.T) {
	f := NewFeed()
	var got []Snapshot
	unsubscribe := f.Subscribe(func(s Snapshot) { got = append(got, s) })
	defer unsubscribe()

	f.Publish(Snapshot{{ParticipantID: "a"}, {ParticipantID: "b"}})
	f.Publish(Snapshot{{ParticipantID: "c"}})

	require.Len(t, got, 2)
	assert.Equal(t, []string{"c"}, ids(got[1]))
	assert.Equal(t, []string{"c"}, ids(f.Latest()))
}

func TestFeed_ReplaysToLateSubscriber(t *testing.T) {
	f := NewFeed()
	f.Publish(Snapshot{{ParticipantID: "a"}})

	var got Snapshot
	unsubscribe := f.Subscribe(func(s Snapshot) { got = s })
	defer unsubscribe()

	assert.Equal(t, []string{"a"}, ids(got))
}

func TestFeed_SnapshotsAreCopies(t *testing.T) {
	f := NewFeed()
	var got Snapshot
	unsubscribe := f.Subscribe(func(s Snapshot) { got = s })
	defer unsubscribe()

	src := Snapshot{{ParticipantID: "a"}}
	f.Publish(src)
	src[0].ParticipantID = "mutated"
	got[0].ParticipantID = "also-mutated"

	assert.Equal(t, "a", f.Latest()[0].ParticipantID)
}

func TestFeed_UnsubscribeStopsDeliveryAndIsIdempotent(t *testing.T) {
	f := NewFeed()
	calls := 0
	unsubscribe := f.Subscribe(func(Snapshot) { calls++ })

	f.Publish(Snapshot{})
	unsubscribe()
	unsubscribe()
	f.Publish(Snapshot{})

	assert.Equal(t, 1, calls)
	assert.Zero(t, f.Subscribers())
}

func TestFeed_UnsubscribeFromInsideHandler(t *testing.T) {
	f := NewFeed()
	calls := 0
	var unsubscribe func()
	unsubscribe = f.Subscribe(func(Snapshot) {
		calls++
		unsubscribe()
	})

	f.Publish(Snapshot{})
	f.Publish(Snapshot{})

	assert.Equal(t, 1, calls)
}

func TestFeed_ConcurrentPublish(t *testing.T) {
	f := NewFeed()
	var mu sync.Mutex
	count := 0
	unsubscribe := f.Subscribe(func(Snapshot) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	defer unsubscribe()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Publish(Snapshot{{ParticipantID: "x"}})
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, count)
}

func TestWatch_ReconcilesEachSnapshot(t *testing.T) {
	f := NewFeed()
	var views [][]string
	unsubscribe := Watch(f, "me", window, func() time.Time { return now }, func(r []Record) {
		views = append(views, ids(r))
	})
	defer unsubscribe()

	f.Publish(Snapshot{
		{ParticipantID: "me", Online: true, LastSeenAt: now},
		{ParticipantID: "mentor", Online: true, LastSeenAt: now},
	})
	f.Publish(Snapshot{
		{ParticipantID: "mentor", Online: false, LastSeenAt: now},
	})

	assert.Equal(t, [][]string{{"mentor"}, {}}, views)
}
