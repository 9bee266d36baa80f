package nostr

import (
	"testing"

	"slidestr/internal/types"
)

func TestAssembleThreadSortsAscending(t *testing.T) {
	root := types.Event{ID: "root", CreatedAt: 100}
	replies := []types.Event{
		{ID: "late", CreatedAt: 300},
		{ID: "early", CreatedAt: 150},
		{ID: "middle", CreatedAt: 200},
	}

	events := AssembleThread(root, replies)

	wantOrder := []string{"root", "early", "middle", "late"}
	if len(events) != len(wantOrder) {
		t.Fatalf("got %d events, want %d", len(events), len(wantOrder))
	}
	for i, id := range wantOrder {
		if events[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, events[i].ID, id)
		}
	}
}

func TestAssembleThreadStableTies(t *testing.T) {
	// Replies sharing a timestamp keep their retrieval order, and a
	// reply tied with the root sorts after it.
	root := types.Event{ID: "root", CreatedAt: 100}
	replies := []types.Event{
		{ID: "a", CreatedAt: 100},
		{ID: "b", CreatedAt: 100},
		{ID: "c", CreatedAt: 100},
	}

	events := AssembleThread(root, replies)

	wantOrder := []string{"root", "a", "b", "c"}
	for i, id := range wantOrder {
		if events[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, events[i].ID, id)
		}
	}
}

func TestAssembleThreadRootOnly(t *testing.T) {
	root := types.Event{ID: "root", CreatedAt: 100}

	events := AssembleThread(root, nil)
	if len(events) != 1 || events[0].ID != "root" {
		t.Errorf("root-only thread = %v, want just the root", events)
	}
}

func TestAssembleThreadRootNewerThanReplies(t *testing.T) {
	// An edited or clock-skewed root still sorts by its timestamp
	root := types.Event{ID: "root", CreatedAt: 500}
	replies := []types.Event{
		{ID: "a", CreatedAt: 100},
	}

	events := AssembleThread(root, replies)
	if events[0].ID != "a" || events[1].ID != "root" {
		t.Errorf("got order %s,%s; want a,root", events[0].ID, events[1].ID)
	}
}
