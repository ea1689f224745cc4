// Package presence derives chat room identity and the "who else is online" view.
package presence

import (
	"sort"
	"strings"
)

// RoomSeparator joins the two participant ids of a room.
const RoomSeparator = "_"

// RoomID is the id of the one-to-one room between a and b. It is symmetric, so
// both sides compute it without coordination. RoomID(a, a) is "a_a".
// Ids containing the separator can collide; callers use UUIDs.
func RoomID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, RoomSeparator)
}

// Participants splits a room id back into its two ids.
func Participants(roomID string) (string, string, bool) {
	a, b, ok := strings.Cut(roomID, RoomSeparator)
	if !ok || a == "" || b == "" {
		return "", "", false
	}
	return a, b, true
}

// Includes reports whether id is one of the room's participants.
func Includes(roomID, id string) bool {
	a, b, ok := Participants(roomID)
	return ok && (a == id || b == id)
}
