package main

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"sync"

	"slidestr/internal/util"
)

// RelaysConfig represents the JSON configuration for the relay pool
type RelaysConfig struct {
	DefaultRelays []string `json:"defaultRelays"`
}

var (
	relaysConfig     *RelaysConfig
	relaysConfigMu   sync.RWMutex
	relaysConfigOnce sync.Once
)

// GetRelaysConfig returns the current relays configuration (thread-safe)
func GetRelaysConfig() *RelaysConfig {
	relaysConfigOnce.Do(func() {
		relaysConfigMu.Lock()
		defer relaysConfigMu.Unlock()
		if relaysConfig == nil {
			relaysConfig = loadRelaysConfigFromFile()
		}
	})

	relaysConfigMu.RLock()
	defer relaysConfigMu.RUnlock()
	return relaysConfig
}

// ReloadRelaysConfig reloads the configuration from file
func ReloadRelaysConfig() error {
	newConfig := loadRelaysConfigFromFile()
	relaysConfigMu.Lock()
	defer relaysConfigMu.Unlock()
	relaysConfig = newConfig
	slog.Info("relays configuration reloaded")
	return nil
}

func loadRelaysConfigFromFile() *RelaysConfig {
	configPath := os.Getenv("RELAYS_CONFIG")
	if configPath == "" {
		configPath = "config/relays.json"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("config file not found, using defaults", "path", configPath)
		} else {
			slog.Warn("could not read config, using defaults", "path", configPath, "error", err)
		}
		return getDefaultRelaysConfig()
	}

	var config RelaysConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Error("invalid JSON in config, using defaults", "path", configPath, "error", err)
		return getDefaultRelaysConfig()
	}

	// Drop malformed entries rather than failing the whole file
	var valid []string
	for _, relay := range config.DefaultRelays {
		if normalized := normalizeRelayURL(relay); normalized != "" {
			valid = append(valid, normalized)
		} else {
			slog.Warn("skipping invalid relay URL in config", "relay", relay)
		}
	}
	config.DefaultRelays = valid

	slog.Info("loaded relays configuration", "path", configPath, "relays", len(config.DefaultRelays))
	return &config
}

// getDefaultRelaysConfig returns the embedded default configuration:
// a set of highly available public relays.
func getDefaultRelaysConfig() *RelaysConfig {
	return &RelaysConfig{
		DefaultRelays: []string{
			"wss://relay.damus.io",
			"wss://relay.nostr.band",
			"wss://nos.lol",
			"wss://relay.snort.social",
			"wss://relay.primal.net",
			"wss://yabu.me",
		},
	}
}

// ConfigGetDefaultRelays returns the relay pool for thread queries
func ConfigGetDefaultRelays() []string {
	config := GetRelaysConfig()
	if len(config.DefaultRelays) > 0 {
		return config.DefaultRelays
	}
	return getDefaultRelaysConfig().DefaultRelays
}

// normalizeRelayURL validates and normalizes a configured relay URL.
// Returns empty string if the URL is invalid/malformed.
func normalizeRelayURL(relayURL string) string {
	relayURL = strings.TrimSpace(relayURL)
	if relayURL == "" {
		return ""
	}

	// Quick reject for obviously bad URLs (no colon = no protocol)
	if !strings.Contains(relayURL, "://") {
		return ""
	}

	// Reject double protocols (wss://https://...)
	if strings.Count(relayURL, "://") > 1 {
		return ""
	}

	parsed, err := url.Parse(relayURL)
	if err != nil {
		return ""
	}

	// Must be ws:// or wss:// (not ww://, http://, etc)
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return ""
	}

	host := parsed.Hostname()
	if host == "" || strings.Contains(host, " ") {
		return ""
	}
	if !strings.Contains(host, ".") && !util.IsLoopbackHost(host) {
		return ""
	}
	if util.IsInternalHost(host) {
		return ""
	}

	// Normalize: lowercase, strip trailing slash
	result := strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(host)
	if parsed.Port() != "" {
		result += ":" + parsed.Port()
	}
	if parsed.Path != "" && parsed.Path != "/" {
		result += parsed.Path
	}
	return result
}
