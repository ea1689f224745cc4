package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	now    = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	window = 2 * time.Minute
)

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ParticipantID
	}
	return out
}

func TestReconcile_FreshnessBoundary(t *testing.T) {
	records := []Record{
		{ParticipantID: "at-edge", Online: true, LastSeenAt: now.Add(-window)},
		{ParticipantID: "past-edge", Online: true, LastSeenAt: now.Add(-window - time.Nanosecond)},
		{ParticipantID: "second-past", Online: true, LastSeenAt: now.Add(-window - time.Second)},
		{ParticipantID: "fresh", Online: true, LastSeenAt: now.Add(-time.Second)},
	}

	got := Reconcile(records, "viewer", now, window)

	assert.Equal(t, []string{"fresh", "at-edge"}, ids(got))
}

func TestReconcile_ExcludesViewerAndOffline(t *testing.T) {
	records := []Record{
		{ParticipantID: "viewer", Online: true, LastSeenAt: now},
		{ParticipantID: "away", Online: false, LastSeenAt: now},
		{ParticipantID: "here", Online: true, LastSeenAt: now},
		{ParticipantID: "no-heartbeat", Online: true},
		{Online: true, LastSeenAt: now},
	}

	assert.Equal(t, []string{"here"}, ids(Reconcile(records, "viewer", now, window)))
}

func TestReconcile_DuplicatesKeepLatest(t *testing.T) {
	records := []Record{
		{ParticipantID: "a", Online: true, LastSeenAt: now.Add(-time.Minute), DisplayName: "old"},
		{ParticipantID: "a", Online: true, LastSeenAt: now.Add(-10 * time.Second), DisplayName: "new"},
		{ParticipantID: "b", Online: true, LastSeenAt: now.Add(-30 * time.Second)},
		{ParticipantID: "b", Online: false, LastSeenAt: now.Add(-5 * time.Second)},
		{ParticipantID: "c", Online: true, LastSeenAt: now.Add(-5 * time.Second)},
		{ParticipantID: "c", Online: false, LastSeenAt: now.Add(-5 * time.Second)},
	}

	got := Reconcile(records, "viewer", now, window)

	if assert.Len(t, got, 1) {
		assert.Equal(t, "a", got[0].ParticipantID)
		assert.Equal(t, "new", got[0].DisplayName)
	}
}

func TestReconcile_GoingOfflineRemovesImmediately(t *testing.T) {
	online := []Record{{ParticipantID: "m", Online: true, LastSeenAt: now}}
	assert.Len(t, Reconcile(online, "viewer", now, window), 1)

	offline := []Record{{ParticipantID: "m", Online: false, LastSeenAt: now}}
	assert.Empty(t, Reconcile(offline, "viewer", now, window))
}

func TestReconcile_OrderAndEmpty(t *testing.T) {
	records := []Record{
		{ParticipantID: "z", Online: true, LastSeenAt: now},
		{ParticipantID: "y", Online: true, LastSeenAt: now},
		{ParticipantID: "x", Online: true, LastSeenAt: now.Add(-time.Minute)},
	}
	assert.Equal(t, []string{"y", "z", "x"}, ids(Reconcile(records, "", now, window)))

	assert.Empty(t, Reconcile(nil, "viewer", now, window))
}

func TestOnlyRole(t *testing.T) {
	records := []Record{
		{ParticipantID: "a", Role: RoleMentor},
		{ParticipantID: "b", Role: RolePeer},
	}
	assert.Equal(t, []string{"a"}, ids(OnlyRole(records, RoleMentor)))
}
