package nostr

import (
	"sort"

	"slidestr/internal/types"
)

// AssembleThread produces the canonical display order for a thread:
// root first, then every reply, stable-sorted ascending by created_at.
// Ties keep retrieval order. No author filtering and no depth checks;
// anyone's reply to the root belongs to the thread.
func AssembleThread(root types.Event, replies []types.Event) []types.Event {
	events := make([]types.Event, 0, 1+len(replies))
	events = append(events, root)
	events = append(events, replies...)

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt < events[j].CreatedAt
	})

	return events
}
