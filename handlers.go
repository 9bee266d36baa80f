package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"slidestr/internal/config"
	"slidestr/internal/nostr"
	"slidestr/internal/types"
)

// deckResult is a finished deck plus the metadata handlers need to render it
type deckResult struct {
	RootID    string
	Slides    []types.Slide
	FromCache bool
}

// buildDeck resolves user input to a root event id, consults the deck cache,
// and runs the fetch pipeline on a miss. Progress is published to the SSE
// broker under the resolved root id on both paths, so a client that opened
// the progress stream before a cache hit still sees the stream complete.
func buildDeck(ctx context.Context, input string) (deckResult, error) {
	rootID := nostr.ResolveEventID(input)

	if slides, ok := deckCache.Get(ctx, rootID); ok {
		progressBroker.Finish(rootID, len(slides), "")
		return deckResult{RootID: rootID, Slides: slides, FromCache: true}, nil
	}

	slides, err := buildDeckShared(ctx, rootID, input)
	if err != nil {
		return deckResult{RootID: rootID}, err
	}
	return deckResult{RootID: rootID, Slides: slides}, nil
}

// buildDeckDirect is the uncoalesced build path behind buildDeckShared
func buildDeckDirect(ctx context.Context, rootID, input string) ([]types.Slide, error) {
	fetcher := newThreadFetcher()
	slides, err := fetchThreadSlides(ctx, fetcher, input, func(count int) {
		progressBroker.Publish(rootID, count)
	})
	if err != nil {
		progressBroker.Finish(rootID, 0, errorKey(err))
		return nil, err
	}

	deckCache.Set(ctx, rootID, slides)
	progressBroker.Finish(rootID, len(slides), "")
	return slides, nil
}

// errorKey maps pipeline failures to i18n message keys
func errorKey(err error) string {
	switch {
	case errors.Is(err, errRootNotFound):
		return "errors.rootNotFound"
	case errors.Is(err, errNoImages):
		return "errors.noImages"
	default:
		return "errors.fetchFailed"
	}
}

// requestLang picks the response language: explicit lang query parameter
// first, then the Accept-Language header's first primary subtag
func requestLang(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return config.NormalizeLang(lang)
	}
	accept := r.Header.Get("Accept-Language")
	if i := strings.IndexAny(accept, ",;-"); i >= 0 {
		accept = accept[:i]
	}
	return config.NormalizeLang(strings.TrimSpace(accept))
}

// indexHandler serves the landing page with the identifier form
func indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	renderIndexPage(w, r, requestLang(r), "")
}

// slidesHandler builds a deck for the requested thread and renders it as HTML.
// Failures re-render the landing page with a localized error message.
func slidesHandler(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("id")
	if input == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	lang := requestLang(r)

	result, err := buildDeck(r.Context(), input)
	if err != nil {
		logger := LoggerFromContext(r.Context())
		if !errors.Is(err, errRootNotFound) && !errors.Is(err, errNoImages) {
			deckFetchFailedTotal.Add(1)
			logger.Error("deck build failed", "input", nostr.ShortID(result.RootID), "error", err)
		} else {
			logger.Info("deck build produced no deck", "input", nostr.ShortID(result.RootID), "reason", errorKey(err))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(deckErrorStatus(err))
		renderIndexPage(w, r, lang, config.T(lang, errorKey(err)))
		return
	}

	renderDeckPage(w, r, lang, input, result)
}

func deckErrorStatus(err error) int {
	switch {
	case errors.Is(err, errRootNotFound):
		return http.StatusNotFound
	case errors.Is(err, errNoImages):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// healthHandler reports liveness plus relay pool state
func healthHandler(w http.ResponseWriter, r *http.Request) {
	active, max := relayPool.GetConnectionStats()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"ok","relays_active":` + strconv.Itoa(active) + `,"relays_max":` + strconv.Itoa(max) + `}`)); err != nil {
		slog.Debug("health write failed", "error", err)
	}
}
