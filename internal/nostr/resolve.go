package nostr

import (
	"log/slog"
	"regexp"
	"strings"

	"slidestr/internal/nips"
)

// idRegex picks a note1/nevent1 identifier out of arbitrary pasted text,
// so a full njump/client URL with the id embedded anywhere still works.
var idRegex = regexp.MustCompile(`(?i:nevent1|note1)[a-z0-9]+`)

// ResolveEventID normalizes raw user input into a candidate hex event id.
// It never fails: anything that does not decode as a NIP-19 note/nevent
// is passed through verbatim as a raw hex candidate, and the relay query
// simply finds nothing for garbage. Partial or garbled pastes are common
// enough that degrading beats erroring here.
func ResolveEventID(input string) string {
	cleaned := strings.TrimSpace(input)

	if m := idRegex.FindString(cleaned); m != "" {
		cleaned = m
	}

	if id, err := nips.DecodeNote(cleaned); err == nil {
		return id
	}

	if nevent, err := nips.DecodeNEvent(cleaned); err == nil {
		// Relay hints and author are ignored; the configured pool is
		// queried either way.
		return nevent.EventID
	}

	slog.Debug("input did not decode as NIP-19, trying as hex", "input", ShortID(cleaned))
	return cleaned
}
