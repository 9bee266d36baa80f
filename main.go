package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"slidestr/internal/config"
)

// Request body size limits
const (
	maxBodySize = 32 * 1024 // 32KB, requests carry only query parameters
)

// limitBody wraps an HTTP handler to limit request body size
func limitBody(next http.HandlerFunc, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		next(w, r)
	}
}

// securityHeaders wraps an HTTP handler to add security headers
func securityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Content Security Policy - defense in depth against XSS
		// - img-src * data:: slide images live on arbitrary hosts, QR codes are data URLs
		// - style-src 'unsafe-inline': the pages ship inline styles
		csp := "default-src 'self'; " +
			"img-src * data:; " +
			"style-src 'self' 'unsafe-inline'; " +
			"script-src 'self'"
		w.Header().Set("Content-Security-Policy", csp)

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")

		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Referrer policy - don't leak full URLs to external sites
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next(w, r)
	}
}

func main() {
	InitLogger()
	config.InitI18n()
	InitDeckCache()
	initTemplates()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// SIGHUP reloads the relay list without a restart
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)
	go func() {
		for range sigCh {
			if err := ReloadRelaysConfig(); err != nil {
				slog.Warn("relays config reload failed", "error", err)
			}
		}
	}()

	mux := http.NewServeMux()

	mux.HandleFunc("/", securityHeaders(indexHandler))
	mux.HandleFunc("/html/slides", securityHeaders(limitBody(slidesHandler, maxBodySize)))
	mux.HandleFunc("/slides.json", limitBody(jsonExportHandler, maxBodySize))
	mux.HandleFunc("/slides.md", limitBody(markdownExportHandler, maxBodySize))
	mux.HandleFunc("/slides/progress", progressHandler)
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/metrics", metricsHandler)

	slog.Info("starting server", "port", port, "relays", len(ConfigGetDefaultRelays()))
	if err := http.ListenAndServe(":"+port, RequestLoggingMiddleware(mux)); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
