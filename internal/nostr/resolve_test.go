package nostr

import (
	"strings"
	"testing"

	"slidestr/internal/nips"
)

const testEventID = "5c83da77af1dec6d7289834998ad7aafbd9e2191396d75ec3cc27f5a77226f36"

func TestResolveEventIDNote(t *testing.T) {
	note, err := nips.EncodeNote(testEventID)
	if err != nil {
		t.Fatalf("EncodeNote failed: %v", err)
	}

	got := ResolveEventID(note)
	if got != testEventID {
		t.Errorf("ResolveEventID(%s) = %s, want %s", note, got, testEventID)
	}
}

func TestResolveEventIDNEvent(t *testing.T) {
	nevent, err := nips.EncodeNEvent(testEventID, []string{"wss://relay.damus.io"})
	if err != nil {
		t.Fatalf("EncodeNEvent failed: %v", err)
	}

	got := ResolveEventID(nevent)
	if got != testEventID {
		t.Errorf("ResolveEventID(%s) = %s, want %s", nevent, got, testEventID)
	}
}

func TestResolveEventIDEmbeddedInURL(t *testing.T) {
	note, err := nips.EncodeNote(testEventID)
	if err != nil {
		t.Fatalf("EncodeNote failed: %v", err)
	}

	inputs := []string{
		"https://njump.me/" + note,
		"nostr:" + note,
		"  " + note + "  ",
	}
	for _, input := range inputs {
		if got := ResolveEventID(input); got != testEventID {
			t.Errorf("ResolveEventID(%q) = %s, want %s", input, got, testEventID)
		}
	}
}

func TestResolveEventIDHexPassthrough(t *testing.T) {
	got := ResolveEventID("  " + testEventID + "  ")
	if got != testEventID {
		t.Errorf("hex passthrough = %s, want %s", got, testEventID)
	}
}

func TestResolveEventIDNeverFails(t *testing.T) {
	// Garbage input degrades to a verbatim candidate instead of erroring
	inputs := []string{
		"",
		"not an id at all",
		"note1tooshort",
		"nevent1qqqqqqqq",
	}
	for _, input := range inputs {
		got := ResolveEventID(input)
		if got != strings.TrimSpace(input) {
			t.Errorf("ResolveEventID(%q) = %q, want verbatim passthrough", input, got)
		}
	}
}
