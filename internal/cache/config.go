package cache

import "time"

// Config holds cache TTL configuration
type Config struct {
	DeckTTL         time.Duration
	MaxEntries      int
	CleanupInterval time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		DeckTTL:         3 * time.Minute, // Threads grow; a refresh should pick up new replies soon
		MaxEntries:      500,
		CleanupInterval: 1 * time.Minute,
	}
}
