package presence

import (
	"sort"
	"time"
)

type Role string

const (
	RolePeer   Role = "peer"
	RoleMentor Role = "mentor"
)

// Record is one participant's presence as last written by their client.
// A zero LastSeenAt means the heartbeat is missing.
type Record struct {
	ParticipantID string    `json:"participant_id"`
	Online        bool      `json:"online"`
	LastSeenAt    time.Time `json:"last_seen_at"`
	Role          Role      `json:"role,omitempty"`
	DisplayName   string    `json:"display_name,omitempty"`
	PhotoURL      string    `json:"photo_url,omitempty"`
}

// Fresh reports whether r counts as online at now. The window is inclusive.
func (r Record) Fresh(now time.Time, window time.Duration) bool {
	if !r.Online || r.ParticipantID == "" || r.LastSeenAt.IsZero() {
		return false
	}
	return now.Sub(r.LastSeenAt) <= window
}

// Reconcile returns who else is online. Duplicates collapse to the record with
// the latest LastSeenAt before filtering, so a newer offline write hides an
// older online one; on equal timestamps offline wins. The viewer is excluded.
// Output is ordered by most recently seen, then participant id.
func Reconcile(records []Record, viewerID string, now time.Time, window time.Duration) []Record {
	latest := make(map[string]Record, len(records))
	for _, r := range records {
		if r.ParticipantID == "" {
			continue
		}
		prev, ok := latest[r.ParticipantID]
		if !ok || newer(r, prev) {
			latest[r.ParticipantID] = r
		}
	}

	out := make([]Record, 0, len(latest))
	for id, r := range latest {
		if id == viewerID || !r.Fresh(now, window) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastSeenAt.Equal(out[j].LastSeenAt) {
			return out[i].LastSeenAt.After(out[j].LastSeenAt)
		}
		return out[i].ParticipantID < out[j].ParticipantID
	})
	return out
}

func newer(r, prev Record) bool {
	if r.LastSeenAt.Equal(prev.LastSeenAt) {
		return !r.Online && prev.Online
	}
	return r.LastSeenAt.After(prev.LastSeenAt)
}

// OnlyRole keeps records with the given role.
func OnlyRole(records []Record, role Role) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Role == role {
			out = append(out, r)
		}
	}
	return out
}
