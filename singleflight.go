package main

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"slidestr/internal/nostr"
	"slidestr/internal/types"
)

// deckGroup deduplicates concurrent builds of the same deck.
// When multiple requests race on one thread, only one actually
// runs the fetch pipeline while the others wait and share the result.
var deckGroup singleflight.Group

// buildDeckShared runs a deck build through singleflight, keyed by the
// resolved root event id. Callers joining an in-flight build share its
// outcome, including its error.
func buildDeckShared(ctx context.Context, rootID, input string) ([]types.Slide, error) {
	result, err, shared := deckGroup.Do(rootID, func() (interface{}, error) {
		return buildDeckDirect(ctx, rootID, input)
	})

	if shared {
		slog.Debug("singleflight: shared deck build", "root", nostr.ShortID(rootID))
	}

	if err != nil {
		return nil, err
	}
	return result.([]types.Slide), nil
}
