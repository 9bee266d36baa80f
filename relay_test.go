package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"slidestr/internal/types"
)

// startFakeRelay runs a minimal NIP-01 relay that answers every REQ with
// the given events followed by EOSE. Returns the ws:// URL.
func startFakeRelay(t *testing.T, events []types.Event) string {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			var msg []interface{}
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if len(msg) < 2 {
				continue
			}
			if msgType, _ := msg[0].(string); msgType != "REQ" {
				continue
			}
			subID, _ := msg[1].(string)
			for _, evt := range events {
				if err := conn.WriteJSON([]interface{}{"EVENT", subID, evt}); err != nil {
					return
				}
			}
			if err := conn.WriteJSON([]interface{}{"EOSE", subID}); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func testEvent(id string, createdAt int64, content string) types.Event {
	return types.Event{
		ID:        id,
		PubKey:    "pk",
		CreatedAt: createdAt,
		Kind:      types.KindTextNote,
		Content:   content,
	}
}

func TestFetchThreadRepliesDeliversEverythingBeforeEOSE(t *testing.T) {
	// A burst of events followed immediately by EOSE must all arrive;
	// events buffered when EOSE is observed may not be dropped.
	var events []types.Event
	for i := 0; i < 20; i++ {
		events = append(events, testEvent(fmt.Sprintf("reply-%02d", i), int64(100+i), "hi"))
	}
	relayURL := startFakeRelay(t, events)

	for run := 0; run < 5; run++ {
		got := fetchThreadReplies(context.Background(), []string{relayURL}, "root")
		if len(got) != len(events) {
			t.Fatalf("run %d: got %d of %d replies", run, len(got), len(events))
		}
	}
}

func TestFetchThreadRepliesUnionsAndDedups(t *testing.T) {
	shared := testEvent("shared", 200, "on both relays")
	relayA := startFakeRelay(t, []types.Event{
		testEvent("only-a", 100, "a"),
		shared,
	})
	relayB := startFakeRelay(t, []types.Event{
		shared,
		testEvent("only-b", 300, "b"),
	})

	got := fetchThreadReplies(context.Background(), []string{relayA, relayB}, "root")

	if len(got) != 3 {
		t.Fatalf("got %d replies, want 3 (union with dedup)", len(got))
	}
	seen := make(map[string]int)
	for _, evt := range got {
		seen[evt.ID]++
	}
	for _, id := range []string{"only-a", "shared", "only-b"} {
		if seen[id] != 1 {
			t.Errorf("event %s appeared %d times, want exactly once", id, seen[id])
		}
	}
}

func TestFetchThreadRepliesAllRelaysDown(t *testing.T) {
	// Nothing listens on this port; subscribe fails per relay and the
	// union degrades to empty, not an error.
	got := fetchThreadReplies(context.Background(), []string{"ws://127.0.0.1:1"}, "root")
	if len(got) != 0 {
		t.Errorf("got %d replies from unreachable relays", len(got))
	}
}

func TestFetchEventByIDFindsMatch(t *testing.T) {
	root := testEvent("the-root", 100, "root note")
	relayURL := startFakeRelay(t, []types.Event{
		testEvent("decoy", 50, "different event"),
		root,
	})

	for run := 0; run < 5; run++ {
		got := fetchEventByID(context.Background(), []string{relayURL}, "the-root")
		if got == nil {
			t.Fatalf("run %d: no event returned", run)
		}
		if got.ID != "the-root" || got.Content != "root note" {
			t.Fatalf("run %d: got %+v", run, got)
		}
	}
}

func TestFetchEventByIDMiss(t *testing.T) {
	relayURL := startFakeRelay(t, nil)

	got := fetchEventByID(context.Background(), []string{relayURL}, "no-such-id")
	if got != nil {
		t.Errorf("got %+v for an id no relay has", got)
	}
}
