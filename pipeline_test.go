package main

import (
	"context"
	"errors"
	"testing"

	"slidestr/internal/types"
)

// stubFetcher satisfies ThreadFetcher without touching the network
type stubFetcher struct {
	root           *types.Event
	replies        []types.Event
	repliesFetched bool
}

func (f *stubFetcher) FetchEventByID(ctx context.Context, eventID string) *types.Event {
	return f.root
}

func (f *stubFetcher) FetchThreadReplies(ctx context.Context, rootID string) []types.Event {
	f.repliesFetched = true
	return f.replies
}

func TestFetchThreadSlidesHappyPath(t *testing.T) {
	fetcher := &stubFetcher{
		root: &types.Event{ID: "root", PubKey: "pk", CreatedAt: 100, Content: "deck https://a.com/1.png"},
		replies: []types.Event{
			{ID: "r2", CreatedAt: 300, Content: "https://a.com/3.jpg"},
			{ID: "r1", CreatedAt: 200, Content: "https://a.com/2.png"},
		},
	}

	slides, err := fetchThreadSlides(context.Background(), fetcher, "root", nil)
	if err != nil {
		t.Fatalf("fetchThreadSlides failed: %v", err)
	}

	// Deck order follows created_at, not reply arrival order
	wantURLs := []string{"https://a.com/1.png", "https://a.com/2.png", "https://a.com/3.jpg"}
	if len(slides) != len(wantURLs) {
		t.Fatalf("got %d slides, want %d", len(slides), len(wantURLs))
	}
	for i, url := range wantURLs {
		if slides[i].ImageURL != url {
			t.Errorf("slide %d = %s, want %s", i, slides[i].ImageURL, url)
		}
	}
}

func TestFetchThreadSlidesRootNotFound(t *testing.T) {
	fetcher := &stubFetcher{root: nil}

	_, err := fetchThreadSlides(context.Background(), fetcher, "missing", nil)
	if !errors.Is(err, errRootNotFound) {
		t.Fatalf("err = %v, want errRootNotFound", err)
	}
	if fetcher.repliesFetched {
		t.Error("replies were fetched despite missing root")
	}
}

func TestFetchThreadSlidesNoImages(t *testing.T) {
	fetcher := &stubFetcher{
		root: &types.Event{ID: "root", CreatedAt: 100, Content: "text only"},
		replies: []types.Event{
			{ID: "r1", CreatedAt: 200, Content: "also just text"},
		},
	}

	_, err := fetchThreadSlides(context.Background(), fetcher, "root", nil)
	if !errors.Is(err, errNoImages) {
		t.Fatalf("err = %v, want errNoImages", err)
	}
}

func TestFetchThreadSlidesProgressReachesDeckSize(t *testing.T) {
	fetcher := &stubFetcher{
		root: &types.Event{ID: "root", CreatedAt: 100, Content: "https://a.com/1.png"},
		replies: []types.Event{
			{ID: "r1", CreatedAt: 200, Content: "nothing"},
			{ID: "r2", CreatedAt: 300, Content: "https://a.com/2.png"},
		},
	}

	var last int
	var calls int
	slides, err := fetchThreadSlides(context.Background(), fetcher, "root", func(count int) {
		if count < last {
			t.Errorf("progress went backwards: %d after %d", count, last)
		}
		last = count
		calls++
	})
	if err != nil {
		t.Fatalf("fetchThreadSlides failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("progress calls = %d, want one per event", calls)
	}
	if last != len(slides) {
		t.Errorf("final progress %d != deck size %d", last, len(slides))
	}
}

func TestErrorKey(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errRootNotFound, "errors.rootNotFound"},
		{errNoImages, "errors.noImages"},
		{errors.New("relay exploded"), "errors.fetchFailed"},
	}
	for _, tt := range tests {
		if got := errorKey(tt.err); got != tt.want {
			t.Errorf("errorKey(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
