package main

import (
	"strings"

	"slidestr/internal/util"
)

// SiteConfig holds site metadata taken from the environment
type SiteConfig struct {
	Name    string
	BaseURL string // external base URL for share links, empty = derive from request
}

var siteConfig = loadSiteConfig()

func loadSiteConfig() SiteConfig {
	return SiteConfig{
		Name:    util.GetEnvOrDefault("SITE_NAME", "slidestr"),
		BaseURL: strings.TrimRight(util.GetEnvOrDefault("SITE_BASE_URL", ""), "/"),
	}
}
