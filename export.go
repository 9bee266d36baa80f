package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"slidestr/internal/config"
	"slidestr/internal/types"
)

// exportDeck runs the shared deck build for an export endpoint and writes
// plain-text errors, since export clients are not browsers
func exportDeck(w http.ResponseWriter, r *http.Request) (deckResult, string, bool) {
	input := r.URL.Query().Get("id")
	if input == "" {
		http.Error(w, "missing id parameter", http.StatusBadRequest)
		return deckResult{}, "", false
	}

	result, err := buildDeck(r.Context(), input)
	if err != nil {
		lang := requestLang(r)
		http.Error(w, config.T(lang, errorKey(err)), deckErrorStatus(err))
		return deckResult{}, "", false
	}
	return result, input, true
}

// jsonExportHandler serves the deck as pretty-printed JSON
func jsonExportHandler(w http.ResponseWriter, r *http.Request) {
	result, _, ok := exportDeck(w, r)
	if !ok {
		return
	}

	data, err := json.MarshalIndent(result.Slides, "", "  ")
	if err != nil {
		http.Error(w, "could not encode deck", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="slides.json"`)
	w.Write(data)
}

// markdownExportHandler serves the deck as a Markdown document, one
// section per slide separated by horizontal rules
func markdownExportHandler(w http.ResponseWriter, r *http.Request) {
	result, input, ok := exportDeck(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="slides.md"`)
	w.Write([]byte(buildMarkdownExport(input, result.Slides)))
}

func buildMarkdownExport(nostrID string, slides []types.Slide) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# NostrSlide Presentation\n\nNostr ID: %s\n\n---\n\n", nostrID)
	for i, slide := range slides {
		fmt.Fprintf(&b, "## Slide %d\n\n![Slide %d](%s)\n\n", i+1, i+1, slide.ImageURL)
		if slide.Content != "" {
			fmt.Fprintf(&b, "%s\n\n", slide.Content)
		}
		b.WriteString("---\n\n")
	}
	return b.String()
}
