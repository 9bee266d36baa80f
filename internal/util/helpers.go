// Package util holds small helpers shared across packages.
package util

import (
	"html/template"
	"log/slog"
	"os"
	"strings"
)

// =============================================================================
// Template Compilation Helpers
// =============================================================================

// MustCompileTemplate compiles a template with the given name and content.
// Exits with a fatal error if compilation fails.
// This is used during initialization when template failures are unrecoverable.
func MustCompileTemplate(name string, funcs template.FuncMap, content string) *template.Template {
	t, err := template.New(name).Funcs(funcs).Parse(content)
	if err != nil {
		slog.Error("failed to compile template", "template", name, "error", err)
		os.Exit(1)
	}
	return t
}

// =============================================================================
// Host Validation Helpers
// =============================================================================

// IsInternalHost checks if a hostname is internal/private and should not be
// connected to. Used to keep relay connections off internal networks.
func IsInternalHost(host string) bool {
	host = strings.ToLower(host)
	return strings.HasSuffix(host, ".local") ||
		strings.HasSuffix(host, ".internal") ||
		strings.HasSuffix(host, ".onion") ||
		strings.HasSuffix(host, ".localhost")
}

// IsLoopbackHost checks if a hostname resolves to localhost.
func IsLoopbackHost(host string) bool {
	host = strings.ToLower(host)
	return host == "localhost" ||
		host == "127.0.0.1" ||
		host == "::1" ||
		strings.HasPrefix(host, "127.") ||
		host == "[::1]"
}

// GetEnvOrDefault returns the env var value or a fallback when unset.
func GetEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
