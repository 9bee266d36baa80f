package main

import (
	"bytes"
	"encoding/base64"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/skip2/go-qrcode"
	"github.com/yuin/goldmark"

	"slidestr/internal/config"
	"slidestr/internal/nips"
	"slidestr/internal/nostr"
	"slidestr/internal/util"
)

var (
	markdownRenderer = goldmark.New()
	captionSanitizer = bluemonday.UGCPolicy()
)

// renderCaption converts a slide caption to sanitized HTML. Captions come
// straight from relay event content, so everything goes through bluemonday.
func renderCaption(caption string) template.HTML {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(caption), &buf); err != nil {
		slog.Debug("markdown conversion failed, escaping raw caption", "error", err)
		return template.HTML(template.HTMLEscapeString(caption))
	}
	return template.HTML(captionSanitizer.SanitizeBytes(buf.Bytes()))
}

// formatNpubShort renders a pubkey as a truncated npub for display
func formatNpubShort(pubkeyHex string) string {
	npub, err := nips.EncodeNpub(pubkeyHex)
	if err != nil {
		return nostr.ShortID(pubkeyHex)
	}
	if len(npub) > 21 {
		return npub[:13] + "..." + npub[len(npub)-8:]
	}
	return npub
}

func generateQRCodeDataURL(content string) string {
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		slog.Error("failed to generate QR code", "error", err)
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

type slideView struct {
	Index       int
	ImageURL    string
	CaptionHTML template.HTML
	AuthorNpub  string
	CreatedAt   int64
	EventID     string
}

type indexPageData struct {
	Lang     string
	SiteName string
	Error    string
}

type deckPageData struct {
	Lang        string
	Input       string
	RootID      string
	Slides      []slideView
	Print       bool
	FromCache   bool
	ShareURL    string
	QRDataURL   string
	JSONURL     string
	MarkdownURL string
	PrintURL    string
	ProgressURL string
}

var (
	cachedIndexTemplate *template.Template
	cachedDeckTemplate  *template.Template
)

func initTemplates() {
	funcMap := template.FuncMap{
		"t": config.T,
		"formatTime": func(ts int64) string {
			return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04")
		},
		"add1": func(n int) int {
			return n + 1
		},
	}
	cachedIndexTemplate = util.MustCompileTemplate("index", funcMap, htmlIndexTemplate)
	cachedDeckTemplate = util.MustCompileTemplate("deck", funcMap, htmlDeckTemplate)

	slog.Info("templates compiled successfully")
}

func renderIndexPage(w http.ResponseWriter, r *http.Request, lang, errorMsg string) {
	data := indexPageData{
		Lang:     lang,
		SiteName: siteConfig.Name,
		Error:    errorMsg,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := cachedIndexTemplate.Execute(w, data); err != nil {
		LoggerFromContext(r.Context()).Error("index template execution failed", "error", err)
	}
}

func renderDeckPage(w http.ResponseWriter, r *http.Request, lang, input string, result deckResult) {
	slides := make([]slideView, 0, len(result.Slides))
	for i, s := range result.Slides {
		slides = append(slides, slideView{
			Index:       i,
			ImageURL:    s.ImageURL,
			CaptionHTML: renderCaption(s.Content),
			AuthorNpub:  formatNpubShort(s.AuthorPubkey),
			CreatedAt:   s.CreatedAt,
			EventID:     s.EventID,
		})
	}

	escapedID := url.QueryEscape(input)

	// Share links use the canonical note1 form of the root id so they
	// stay stable no matter what the user originally pasted.
	shareID := escapedID
	if note, err := nips.EncodeNote(result.RootID); err == nil {
		shareID = note
	}
	shareURL := requestBaseURL(r) + "/html/slides?id=" + shareID
	data := deckPageData{
		Lang:        lang,
		Input:       input,
		RootID:      result.RootID,
		Slides:      slides,
		Print:       r.URL.Query().Get("print") == "1",
		FromCache:   result.FromCache,
		ShareURL:    shareURL,
		QRDataURL:   generateQRCodeDataURL(shareURL),
		JSONURL:     "/slides.json?id=" + escapedID,
		MarkdownURL: "/slides.md?id=" + escapedID,
		PrintURL:    "/html/slides?id=" + escapedID + "&print=1&lang=" + lang,
		ProgressURL: "/slides/progress?id=" + escapedID,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := cachedDeckTemplate.Execute(w, data); err != nil {
		LoggerFromContext(r.Context()).Error("deck template execution failed", "error", err)
	}
}

// requestBaseURL reconstructs the external base URL for share links.
// SITE_BASE_URL wins when configured; otherwise the request host is
// used, honoring the proxy scheme header.
func requestBaseURL(r *http.Request) string {
	if siteConfig.BaseURL != "" {
		return siteConfig.BaseURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

var htmlIndexTemplate = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{t .Lang "site.title"}}</title>
  <style>
    * { box-sizing: border-box; margin: 0; padding: 0; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
      line-height: 1.6;
      color: #333;
      background: #f5f5f5;
      padding: 20px;
    }
    .container {
      max-width: 640px;
      margin: 40px auto;
      background: white;
      border-radius: 8px;
      box-shadow: 0 2px 8px rgba(0,0,0,0.1);
      overflow: hidden;
    }
    header {
      background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
      color: white;
      padding: 30px;
      text-align: center;
    }
    header h1 { font-size: 28px; margin-bottom: 8px; }
    .subtitle { opacity: 0.9; font-size: 14px; }
    .content { padding: 30px; }
    .error {
      background: #f8d7da;
      color: #721c24;
      border: 1px solid #f5c6cb;
      padding: 12px 16px;
      border-radius: 6px;
      margin-bottom: 20px;
    }
    label { display: block; font-weight: 600; margin-bottom: 8px; }
    input[type="text"] {
      width: 100%;
      padding: 12px;
      border: 1px solid #ced4da;
      border-radius: 6px;
      font-size: 15px;
      font-family: monospace;
    }
    .hint { color: #6c757d; font-size: 13px; margin-top: 6px; }
    button {
      margin-top: 20px;
      width: 100%;
      padding: 12px;
      background: #667eea;
      color: white;
      border: none;
      border-radius: 6px;
      font-size: 16px;
      cursor: pointer;
    }
    button:hover { background: #5a6fd6; }
    .lang-switch { text-align: center; padding: 15px; font-size: 13px; }
    .lang-switch a { color: #667eea; margin: 0 6px; }
  </style>
</head>
<body>
  <div class="container">
    <header>
      <h1>{{.SiteName}}</h1>
      <div class="subtitle">{{t .Lang "hero.subtitle"}}</div>
    </header>
    <div class="content">
      {{if .Error}}<div class="error">{{.Error}}</div>{{end}}
      <form method="GET" action="/html/slides">
        <label for="id">{{t .Lang "form.label"}}</label>
        <input type="text" id="id" name="id" placeholder="nevent1... / note1... / hex" required autofocus>
        <input type="hidden" name="lang" value="{{.Lang}}">
        <div class="hint">{{t .Lang "form.hint"}}</div>
        <button type="submit">{{t .Lang "form.submit"}}</button>
      </form>
    </div>
    <div class="lang-switch">
      <a href="/?lang=en">English</a> | <a href="/?lang=ja">日本語</a>
    </div>
  </div>
</body>
</html>`

var htmlDeckTemplate = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{t .Lang "deck.title"}}</title>
  <style>
    * { box-sizing: border-box; margin: 0; padding: 0; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
      color: #eee;
      background: #111;
    }
    {{if .Print}}
    body { background: white; color: #111; }
    .slide {
      page-break-after: always;
      min-height: auto;
      padding: 40px;
      border-bottom: 1px solid #ddd;
    }
    .toolbar, .dots { display: none; }
    {{else}}
    html { scroll-snap-type: y mandatory; }
    .slide {
      min-height: 100vh;
      scroll-snap-align: start;
      padding: 60px 20px;
    }
    {{end}}
    .slide {
      display: flex;
      flex-direction: column;
      align-items: center;
      justify-content: center;
    }
    .slide img {
      max-width: 90%;
      max-height: 65vh;
      border-radius: 6px;
    }
    .caption {
      max-width: 720px;
      margin-top: 24px;
      font-size: 17px;
      line-height: 1.6;
      text-align: center;
    }
    .caption a { color: #8ea2ff; }
    .meta {
      margin-top: 16px;
      font-size: 12px;
      opacity: 0.6;
      font-family: monospace;
    }
    .toolbar {
      position: fixed;
      top: 0;
      left: 0;
      right: 0;
      display: flex;
      gap: 14px;
      align-items: center;
      padding: 10px 16px;
      background: rgba(17,17,17,0.85);
      font-size: 13px;
      z-index: 10;
    }
    .toolbar a { color: #8ea2ff; text-decoration: none; }
    .toolbar .count { margin-left: auto; opacity: 0.7; }
    .share {
      display: flex;
      flex-direction: column;
      align-items: center;
      padding: 50px 20px;
      gap: 12px;
    }
    .share img { width: 160px; height: 160px; background: white; padding: 8px; border-radius: 6px; }
    .share .url { font-family: monospace; font-size: 12px; opacity: 0.7; word-break: break-all; }
  </style>
</head>
<body>
  <div class="toolbar">
    <a href="/?lang={{.Lang}}">{{t .Lang "deck.back"}}</a>
    <a href="{{.JSONURL}}">{{t .Lang "deck.exportJson"}}</a>
    <a href="{{.MarkdownURL}}">{{t .Lang "deck.exportMarkdown"}}</a>
    <a href="{{.PrintURL}}">{{t .Lang "deck.print"}}</a>
    <span class="count">{{len .Slides}} {{t .Lang "deck.slides"}}</span>
  </div>
  {{range .Slides}}
  <section class="slide" id="slide-{{add1 .Index}}">
    <img src="{{.ImageURL}}" alt="Slide {{add1 .Index}}" loading="lazy">
    {{if .CaptionHTML}}<div class="caption">{{.CaptionHTML}}</div>{{end}}
    <div class="meta">{{add1 .Index}} / {{len $.Slides}} &middot; {{.AuthorNpub}} &middot; {{formatTime .CreatedAt}}</div>
  </section>
  {{end}}
  {{if not .Print}}
  <section class="slide share">
    <h2>{{t .Lang "deck.share"}}</h2>
    {{if .QRDataURL}}<img src="{{.QRDataURL}}" alt="QR code">{{end}}
    <div class="url">{{.ShareURL}}</div>
    <div class="url">{{t .Lang "deck.keyboardHint"}}</div>
  </section>
  {{end}}
</body>
</html>`
