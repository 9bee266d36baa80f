// Package config loads the JSON configuration files under config/.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"slidestr/internal/util"
)

// I18nStrings holds the localized strings for one language
type I18nStrings map[string]string

var (
	i18nTables  = map[string]I18nStrings{}
	i18nMu      sync.RWMutex
	i18nDir     = util.GetEnvOrDefault("I18N_CONFIG_DIR", "config/i18n")
	defaultLang = util.GetEnvOrDefault("I18N_DEFAULT_LANG", "en")
)

// SupportedLangs are the languages shipped under config/i18n.
var SupportedLangs = []string{"en", "ja"}

// InitI18n loads all language tables. Call during startup; a missing or
// broken table logs a warning and that language falls back to the default.
func InitI18n() {
	for _, lang := range SupportedLangs {
		if err := loadI18nLang(lang); err != nil {
			slog.Warn("could not load i18n strings", "lang", lang, "error", err)
		}
	}
}

func loadI18nLang(lang string) error {
	configPath := filepath.Join(i18nDir, lang+".json")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", configPath)
		}
		return fmt.Errorf("could not read %s: %w", configPath, err)
	}

	var strs I18nStrings
	if err := json.Unmarshal(data, &strs); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", configPath, err)
	}

	i18nMu.Lock()
	i18nTables[lang] = strs
	i18nMu.Unlock()

	slog.Info("loaded i18n strings", "lang", lang, "count", len(strs), "path", configPath)
	return nil
}

// NormalizeLang maps a requested language onto a supported one.
func NormalizeLang(lang string) string {
	for _, supported := range SupportedLangs {
		if lang == supported {
			return lang
		}
	}
	return defaultLang
}

// T looks up a localized string by language and key. Falls back to the
// default language, then to the key itself so missing entries stay visible.
func T(lang, key string) string {
	i18nMu.RLock()
	defer i18nMu.RUnlock()

	if table, ok := i18nTables[lang]; ok {
		if s, ok := table[key]; ok {
			return s
		}
	}
	if table, ok := i18nTables[defaultLang]; ok {
		if s, ok := table[key]; ok {
			return s
		}
	}
	return key
}
