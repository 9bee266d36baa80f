package nips

import (
	"encoding/hex"
	"errors"
	"strings"
)

// NEvent represents a decoded nevent1... identifier
type NEvent struct {
	EventID    string   // 32-byte event ID as hex
	Author     string   // Optional 32-byte author pubkey as hex
	RelayHints []string // Optional relay URLs
}

// TLV type constants for NIP-19
const (
	tlvTypeSpecial = 0 // event_id for nevent
	tlvTypeRelay   = 1 // relay URL
	tlvTypeAuthor  = 2 // author pubkey
)

// DecodeNote decodes a note1... bech32 string to a hex event ID
func DecodeNote(note string) (string, error) {
	if !strings.HasPrefix(note, "note1") {
		return "", errors.New("not a note")
	}

	hrp, data, err := Bech32Decode(note)
	if err != nil {
		return "", err
	}
	if hrp != "note" {
		return "", errors.New("invalid hrp for note")
	}

	eventIDBytes, err := Bech32ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", err
	}
	if len(eventIDBytes) != 32 {
		return "", errors.New("invalid note length")
	}

	return hex.EncodeToString(eventIDBytes), nil
}

// DecodeNEvent decodes a nevent1... bech32 string. Only the event ID is
// required; relay hints and author are carried along when present.
func DecodeNEvent(nevent string) (*NEvent, error) {
	if !strings.HasPrefix(nevent, "nevent1") {
		return nil, errors.New("not a nevent")
	}

	hrp, data, err := Bech32Decode(nevent)
	if err != nil {
		return nil, err
	}
	if hrp != "nevent" {
		return nil, errors.New("invalid hrp for nevent")
	}

	tlvBytes, err := Bech32ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, err
	}

	n := &NEvent{RelayHints: []string{}}
	for i := 0; i < len(tlvBytes); {
		if i+2 > len(tlvBytes) {
			break
		}

		tlvType := tlvBytes[i]
		tlvLen := int(tlvBytes[i+1])
		i += 2

		if i+tlvLen > len(tlvBytes) {
			break
		}

		value := tlvBytes[i : i+tlvLen]
		i += tlvLen

		switch tlvType {
		case tlvTypeSpecial:
			if tlvLen == 32 {
				n.EventID = hex.EncodeToString(value)
			}
		case tlvTypeRelay:
			n.RelayHints = append(n.RelayHints, string(value))
		case tlvTypeAuthor:
			if tlvLen == 32 {
				n.Author = hex.EncodeToString(value)
			}
		}
	}

	if n.EventID == "" {
		return nil, errors.New("nevent missing event ID")
	}

	return n, nil
}

// EncodeNote encodes a hex event ID to note1... form
func EncodeNote(hexEventID string) (string, error) {
	return encode32("note", hexEventID)
}

// EncodeNpub encodes a hex pubkey to npub1... form
func EncodeNpub(hexPubkey string) (string, error) {
	return encode32("npub", hexPubkey)
}

func encode32(hrp string, hexPayload string) (string, error) {
	payload, err := hex.DecodeString(hexPayload)
	if err != nil {
		return "", err
	}
	if len(payload) != 32 {
		return "", errors.New("invalid payload length")
	}

	data, err := Bech32ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}

	return Bech32Encode(hrp, data)
}

// EncodeNEvent encodes a hex event ID (and optional relay hints) to
// nevent1... form, used for share links.
func EncodeNEvent(hexEventID string, relayHints []string) (string, error) {
	idBytes, err := hex.DecodeString(hexEventID)
	if err != nil {
		return "", err
	}
	if len(idBytes) != 32 {
		return "", errors.New("invalid event ID length")
	}

	var tlv []byte
	tlv = append(tlv, tlvTypeSpecial, 32)
	tlv = append(tlv, idBytes...)
	for _, relay := range relayHints {
		if len(relay) == 0 || len(relay) > 255 {
			continue
		}
		tlv = append(tlv, tlvTypeRelay, byte(len(relay)))
		tlv = append(tlv, []byte(relay)...)
	}

	data, err := Bech32ConvertBits(tlv, 8, 5, true)
	if err != nil {
		return "", err
	}

	return Bech32Encode("nevent", data)
}
