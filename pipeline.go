package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"slidestr/internal/nostr"
	"slidestr/internal/types"
)

// User-facing pipeline outcomes. Everything else that escapes the
// pipeline is a generic fetch failure.
var (
	errRootNotFound = errors.New("root event not found")
	errNoImages     = errors.New("no images found in thread")
)

// ThreadFetcher is the relay-side capability the pipeline needs:
// a raced point lookup and a fanned-out reply query.
type ThreadFetcher interface {
	FetchEventByID(ctx context.Context, eventID string) *types.Event
	FetchThreadReplies(ctx context.Context, rootID string) []types.Event
}

// relayThreadFetcher backs ThreadFetcher with the shared relay pool
type relayThreadFetcher struct {
	relays []string
}

func (f *relayThreadFetcher) FetchEventByID(ctx context.Context, eventID string) *types.Event {
	return fetchEventByID(ctx, f.relays, eventID)
}

func (f *relayThreadFetcher) FetchThreadReplies(ctx context.Context, rootID string) []types.Event {
	return fetchThreadReplies(ctx, f.relays, rootID)
}

// newThreadFetcher returns a fetcher over the configured relay pool
func newThreadFetcher() ThreadFetcher {
	return &relayThreadFetcher{relays: ConfigGetDefaultRelays()}
}

// fetchThreadSlides runs the whole resolution pipeline once: resolve the
// input to an event id, fetch the root, fetch its replies, order the
// thread, and build the slide deck. onProgress receives the running slide
// count after every event scanned (monotonically non-decreasing; final
// value equals the deck size).
//
// The run is terminal: no retries, and a failed invocation leaves nothing
// behind. Relay subscriptions opened by the fetches are released inside
// them on every exit path.
func fetchThreadSlides(ctx context.Context, fetcher ThreadFetcher, input string, onProgress func(count int)) ([]types.Slide, error) {
	start := time.Now()

	rootID := nostr.ResolveEventID(input)
	slog.Info("pipeline: resolving thread", "root", nostr.ShortID(rootID))

	root := fetcher.FetchEventByID(ctx, rootID)
	if root == nil {
		deckRootNotFoundTotal.Add(1)
		return nil, errRootNotFound
	}

	replies := fetcher.FetchThreadReplies(ctx, rootID)

	events := nostr.AssembleThread(*root, replies)
	slides := nostr.BuildSlides(events, onProgress)

	if len(slides) == 0 {
		deckNoImagesTotal.Add(1)
		return nil, errNoImages
	}

	decksBuiltTotal.Add(1)
	slog.Info("pipeline: deck built",
		"root", nostr.ShortID(rootID),
		"events", len(events),
		"slides", len(slides),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return slides, nil
}
