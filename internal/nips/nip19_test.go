package nips

import (
	"strings"
	"testing"
)

const testHexID = "b9f5441e45ca39179320e0031cfb18e34078673dcf3d9d04dd5fce94c441611a"

func TestNoteRoundTrip(t *testing.T) {
	note, err := EncodeNote(testHexID)
	if err != nil {
		t.Fatalf("EncodeNote failed: %v", err)
	}
	if !strings.HasPrefix(note, "note1") {
		t.Fatalf("encoded note = %s, want note1 prefix", note)
	}

	decoded, err := DecodeNote(note)
	if err != nil {
		t.Fatalf("DecodeNote failed: %v", err)
	}
	if decoded != testHexID {
		t.Errorf("round trip = %s, want %s", decoded, testHexID)
	}
}

func TestNEventRoundTrip(t *testing.T) {
	relays := []string{"wss://relay.damus.io", "wss://nos.lol"}
	nevent, err := EncodeNEvent(testHexID, relays)
	if err != nil {
		t.Fatalf("EncodeNEvent failed: %v", err)
	}
	if !strings.HasPrefix(nevent, "nevent1") {
		t.Fatalf("encoded nevent = %s, want nevent1 prefix", nevent)
	}

	decoded, err := DecodeNEvent(nevent)
	if err != nil {
		t.Fatalf("DecodeNEvent failed: %v", err)
	}
	if decoded.EventID != testHexID {
		t.Errorf("event ID = %s, want %s", decoded.EventID, testHexID)
	}
	if len(decoded.RelayHints) != 2 || decoded.RelayHints[0] != relays[0] || decoded.RelayHints[1] != relays[1] {
		t.Errorf("relay hints = %v, want %v", decoded.RelayHints, relays)
	}
}

func TestNEventNoRelays(t *testing.T) {
	nevent, err := EncodeNEvent(testHexID, nil)
	if err != nil {
		t.Fatalf("EncodeNEvent failed: %v", err)
	}

	decoded, err := DecodeNEvent(nevent)
	if err != nil {
		t.Fatalf("DecodeNEvent failed: %v", err)
	}
	if decoded.EventID != testHexID {
		t.Errorf("event ID = %s, want %s", decoded.EventID, testHexID)
	}
	if len(decoded.RelayHints) != 0 {
		t.Errorf("relay hints = %v, want none", decoded.RelayHints)
	}
}

func TestEncodeNpub(t *testing.T) {
	npub, err := EncodeNpub(testHexID)
	if err != nil {
		t.Fatalf("EncodeNpub failed: %v", err)
	}
	if !strings.HasPrefix(npub, "npub1") {
		t.Errorf("encoded npub = %s, want npub1 prefix", npub)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := DecodeNote("nevent1abc"); err == nil {
		t.Error("DecodeNote accepted a nevent prefix")
	}
	if _, err := DecodeNote("note1qqqqqqqqqq"); err == nil {
		t.Error("DecodeNote accepted a truncated payload")
	}
	if _, err := DecodeNEvent("note1abc"); err == nil {
		t.Error("DecodeNEvent accepted a note prefix")
	}
	if _, err := EncodeNote("deadbeef"); err == nil {
		t.Error("EncodeNote accepted a short payload")
	}
	if _, err := EncodeNote("zz"); err == nil {
		t.Error("EncodeNote accepted non-hex input")
	}
}
