// Package types provides shared type definitions used across internal packages.
package types

// Event represents a Nostr event (NIP-01)
type Event struct {
	ID         string     `json:"id"`
	PubKey     string     `json:"pubkey"`
	CreatedAt  int64      `json:"created_at"`
	Kind       int        `json:"kind"`
	Tags       [][]string `json:"tags"`
	Content    string     `json:"content"`
	Sig        string     `json:"sig"`
	RelaysSeen []string   `json:"-"`
}

// Filter represents a Nostr subscription filter (NIP-01)
type Filter struct {
	IDs   []string
	Kinds []int
	Limit int
	ETags []string // #e tag filter (events referencing these ids)
}

// NostrMessage represents a raw Nostr protocol message
type NostrMessage []interface{}

// KindTextNote is the NIP-01 kind for plain text notes. Thread replies
// are text notes carrying an "e" tag back to the root.
const KindTextNote = 1
