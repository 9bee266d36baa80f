package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"slidestr/internal/config"
	"slidestr/internal/nostr"
)

// SSE event types
const (
	SSEEventProgress = "progress"
	SSEEventDone     = "done"
	SSEEventError    = "error"
	SSEEventPing     = "ping"
)

// ProgressUpdate is one step of a deck build as seen by SSE clients.
// Err carries an i18n message key; the stream handler localizes it for
// the requesting client, since the broker has no request language.
type ProgressUpdate struct {
	Count int
	Done  bool
	Err   string
}

type progressClient struct {
	ch        chan ProgressUpdate
	addedAt   time.Time
	closeOnce sync.Once
}

func (c *progressClient) close() {
	c.closeOnce.Do(func() {
		close(c.ch)
	})
}

// ProgressBroker fans deck-build progress out to SSE clients, keyed by
// resolved root event id. Publishing to a deck nobody watches is a no-op.
type ProgressBroker struct {
	mu      sync.RWMutex
	clients map[string][]*progressClient
}

var progressBroker = &ProgressBroker{
	clients: make(map[string][]*progressClient),
}

// Maximum age for SSE client channels before cleanup
const maxSSEClientAge = 15 * time.Minute

func init() {
	go progressBroker.cleanupLoop()
}

func (b *ProgressBroker) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		b.cleanup()
	}
}

// cleanup removes clients that are too old (likely orphaned)
func (b *ProgressBroker) cleanup() {
	now := time.Now()
	removed := 0

	b.mu.Lock()
	for rootID, clients := range b.clients {
		var kept []*progressClient
		for _, client := range clients {
			if now.Sub(client.addedAt) > maxSSEClientAge {
				client.close()
				removed++
			} else {
				kept = append(kept, client)
			}
		}
		if len(kept) == 0 {
			delete(b.clients, rootID)
		} else {
			b.clients[rootID] = kept
		}
	}
	b.mu.Unlock()

	if removed > 0 {
		slog.Debug("SSE progress: cleaned up orphaned clients", "count", removed)
	}
}

// Subscribe registers a client for a deck's progress updates
func (b *ProgressBroker) Subscribe(rootID string) *progressClient {
	client := &progressClient{
		ch:      make(chan ProgressUpdate, 16),
		addedAt: time.Now(),
	}
	b.mu.Lock()
	b.clients[rootID] = append(b.clients[rootID], client)
	b.mu.Unlock()
	return client
}

// Unsubscribe removes a client and closes its channel
func (b *ProgressBroker) Unsubscribe(rootID string, client *progressClient) {
	b.mu.Lock()
	clients := b.clients[rootID]
	for i, c := range clients {
		if c == client {
			b.clients[rootID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(b.clients[rootID]) == 0 {
		delete(b.clients, rootID)
	}
	b.mu.Unlock()

	client.close()
}

// Publish sends a progress count to every client watching a deck.
// Slow clients miss intermediate counts rather than blocking the pipeline.
func (b *ProgressBroker) Publish(rootID string, count int) {
	b.send(rootID, ProgressUpdate{Count: count})
}

// Finish signals the end of a deck build, with an error message when it failed
func (b *ProgressBroker) Finish(rootID string, count int, errMsg string) {
	b.send(rootID, ProgressUpdate{Count: count, Done: true, Err: errMsg})
}

func (b *ProgressBroker) send(rootID string, update ProgressUpdate) {
	b.mu.RLock()
	clients := append([]*progressClient{}, b.clients[rootID]...)
	b.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.ch <- update:
		default:
			// Client buffer full, skip this update
		}
	}
}

// progressHandler streams deck-build progress as SSE. The counts are
// monotonically non-decreasing; the stream ends with a done (or error)
// event once the pipeline finishes.
func progressHandler(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("id")
	if input == "" {
		http.Error(w, "missing id parameter", http.StatusBadRequest)
		return
	}
	rootID := nostr.ResolveEventID(input)
	lang := requestLang(r)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := progressBroker.Subscribe(rootID)
	defer progressBroker.Unsubscribe(rootID, client)

	sseConnectionsActive.Add(1)
	defer sseConnectionsActive.Add(-1)

	pingTicker := time.NewTicker(25 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case update, ok := <-client.ch:
			if !ok {
				return
			}
			if update.Done {
				if update.Err != "" {
					fmt.Fprintf(w, "event: %s\ndata: %s\n\n", SSEEventError, config.T(lang, update.Err))
				} else {
					fmt.Fprintf(w, "event: %s\ndata: %d\n\n", SSEEventDone, update.Count)
				}
				flusher.Flush()
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %d\n\n", SSEEventProgress, update.Count)
			flusher.Flush()

		case <-pingTicker.C:
			fmt.Fprintf(w, "event: %s\ndata: {}\n\n", SSEEventPing)
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
