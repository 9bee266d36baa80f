package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"slidestr/internal/nostr"
	"slidestr/internal/types"
)

// Fetch windows. Point lookups resolve fast on healthy relays; the
// reply fan-out waits longer because #e tag queries are slow on some
// relays.
const (
	rootFetchTimeout  = 3 * time.Second
	replyFetchTimeout = 5 * time.Second
	replyFetchLimit   = 500
)

// newSubID generates a random subscription id
func newSubID(prefix string) string {
	b := make([]byte, 4)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}

// drainBufferedEvents empties whatever the read loop already queued on a
// subscription. EVENTs always precede EOSE on the wire, but they land on
// separate channels here, and select takes a ready EOSE over ready events
// as often as not. Callers must drain after observing EOSE or a close, or
// delivered events are silently lost.
func drainBufferedEvents(sub *Subscription) []types.Event {
	var events []types.Event
	for {
		select {
		case evt := <-sub.EventChan:
			events = append(events, evt)
		default:
			return events
		}
	}
}

// buildReqFilter converts a Filter into the NIP-01 REQ filter object
func buildReqFilter(filter types.Filter) map[string]interface{} {
	req := map[string]interface{}{}
	if len(filter.IDs) > 0 {
		req["ids"] = filter.IDs
	}
	if len(filter.Kinds) > 0 {
		req["kinds"] = filter.Kinds
	}
	if len(filter.ETags) > 0 {
		req["#e"] = filter.ETags
	}
	if filter.Limit > 0 {
		req["limit"] = filter.Limit
	}
	return req
}

// fetchEventByID races a point lookup against every relay and returns the
// first event whose id matches, or nil when no relay answers within the
// window. Well-behaved relays return identical content for the same id,
// so whichever answers first wins. Individual relay failures are expected
// and logged at debug level only.
//
// Every subscription opened here is released before return, on success
// and on timeout alike.
func fetchEventByID(ctx context.Context, relays []string, eventID string) *types.Event {
	ctx, cancel := context.WithTimeout(ctx, rootFetchTimeout)
	defer cancel()

	filter := buildReqFilter(types.Filter{IDs: []string{eventID}, Limit: 1})

	var wg sync.WaitGroup
	resultChan := make(chan types.Event, len(relays))

	for _, relay := range relays {
		wg.Add(1)
		go func(relayURL string) {
			defer wg.Done()

			sub, err := relayPool.Subscribe(ctx, relayURL, newSubID("root"), filter)
			if err != nil {
				slog.Debug("root fetch: subscribe failed", "relay", relayURL, "error", err)
				return
			}
			defer relayPool.Unsubscribe(relayURL, sub)

			reportMatch := func(evt types.Event) {
				select {
				case resultChan <- evt:
				default:
				}
			}

			for {
				select {
				case evt := <-sub.EventChan:
					if evt.ID == eventID {
						reportMatch(evt)
						return
					}
				case <-sub.EOSEChan:
					for _, evt := range drainBufferedEvents(sub) {
						if evt.ID == eventID {
							reportMatch(evt)
							return
						}
					}
					return
				case <-sub.Done:
					for _, evt := range drainBufferedEvents(sub) {
						if evt.ID == eventID {
							reportMatch(evt)
							return
						}
					}
					return
				case <-ctx.Done():
					return
				}
			}
		}(relay)
	}

	// Close resultChan once every relay goroutine has given up, so the
	// collect below does not block on an all-miss outcome.
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	select {
	case evt, ok := <-resultChan:
		if !ok {
			return nil
		}
		cancel() // first success wins, stop the stragglers
		return &evt
	case <-ctx.Done():
		return nil
	}
}

// fetchThreadReplies fans a kind-1 #e filter out to every relay and
// unions the results, deduplicated by event id. Returns an empty slice
// when every relay is unreachable; partial relay availability is the
// normal case, not an error.
func fetchThreadReplies(ctx context.Context, relays []string, rootID string) []types.Event {
	ctx, cancel := context.WithTimeout(ctx, replyFetchTimeout)
	defer cancel()

	filter := buildReqFilter(types.Filter{
		Kinds: []int{types.KindTextNote},
		ETags: []string{rootID},
		Limit: replyFetchLimit,
	})

	var wg sync.WaitGroup
	eventChan := make(chan types.Event, 1000)

	for _, relay := range relays {
		wg.Add(1)
		go func(relayURL string) {
			defer wg.Done()

			sub, err := relayPool.Subscribe(ctx, relayURL, newSubID("replies"), filter)
			if err != nil {
				slog.Debug("reply fetch: subscribe failed", "relay", relayURL, "error", err)
				return
			}
			defer relayPool.Unsubscribe(relayURL, sub)

			forward := func(evt types.Event) bool {
				select {
				case eventChan <- evt:
					return true
				case <-ctx.Done():
					return false
				}
			}

			for {
				select {
				case evt := <-sub.EventChan:
					if !forward(evt) {
						return
					}
				case <-sub.EOSEChan:
					for _, evt := range drainBufferedEvents(sub) {
						if !forward(evt) {
							return
						}
					}
					return
				case <-sub.Done:
					for _, evt := range drainBufferedEvents(sub) {
						if !forward(evt) {
							return
						}
					}
					return
				case <-ctx.Done():
					return
				}
			}
		}(relay)
	}

	go func() {
		wg.Wait()
		close(eventChan)
	}()

	seenIDs := make(map[string]bool)
	events := []types.Event{}
	collect := func(evt types.Event) {
		if !seenIDs[evt.ID] {
			seenIDs[evt.ID] = true
			events = append(events, evt)
		}
	}

collectLoop:
	for {
		select {
		case evt, ok := <-eventChan:
			if !ok {
				break collectLoop
			}
			collect(evt)
		case <-ctx.Done():
			slog.Debug("reply fetch: timeout", "events", len(events))
			// Keep whatever producers forwarded before the window closed
			for {
				select {
				case evt, ok := <-eventChan:
					if !ok {
						break collectLoop
					}
					collect(evt)
				default:
					break collectLoop
				}
			}
		}
	}

	slog.Debug("reply fetch: done", "root", nostr.ShortID(rootID), "replies", len(events))
	return events
}
