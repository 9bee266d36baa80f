package main

import (
	"strings"
	"testing"

	"slidestr/internal/types"
)

func TestBuildMarkdownExport(t *testing.T) {
	slides := []types.Slide{
		{ID: "e1-https://a.com/1.png", ImageURL: "https://a.com/1.png", Content: "opening"},
		{ID: "e2-https://a.com/2.jpg", ImageURL: "https://a.com/2.jpg", Content: ""},
	}

	md := buildMarkdownExport("note1example", slides)

	if !strings.HasPrefix(md, "# NostrSlide Presentation\n\nNostr ID: note1example\n\n---\n\n") {
		t.Errorf("unexpected header:\n%s", md)
	}
	if !strings.Contains(md, "## Slide 1\n\n![Slide 1](https://a.com/1.png)\n\nopening\n\n---\n\n") {
		t.Errorf("slide 1 section wrong:\n%s", md)
	}
	// Empty captions are skipped, not rendered as a blank paragraph
	if !strings.Contains(md, "## Slide 2\n\n![Slide 2](https://a.com/2.jpg)\n\n---\n\n") {
		t.Errorf("slide 2 section wrong:\n%s", md)
	}
}

func TestBuildMarkdownExportEmptyDeck(t *testing.T) {
	md := buildMarkdownExport("abc", nil)
	if !strings.HasSuffix(md, "---\n\n") {
		t.Errorf("empty deck export malformed:\n%s", md)
	}
	if strings.Contains(md, "## Slide") {
		t.Errorf("empty deck should have no slide sections:\n%s", md)
	}
}
