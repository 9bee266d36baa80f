package nostr

import (
	"regexp"
)

// imageURLRegex matches http(s) URLs ending in a known image extension,
// optionally followed by a query string. Matching is applied per
// whitespace-delimited token so two adjacent URLs never merge into one
// match. Text glued after the extension is dropped unless it is a query
// string, which is kept whole.
var imageURLRegex = regexp.MustCompile(`(?i)https?://.*\.(?:png|jpg|jpeg|gif|webp|svg)(?:\?.*)?`)

// whitespaceRegex splits content on runs of whitespace
var whitespaceRegex = regexp.MustCompile(`\s+`)

// ExtractImageURLs returns the image URLs embedded in free-form note
// content, in order of first appearance, deduplicated. Pure function.
func ExtractImageURLs(content string) []string {
	tokens := whitespaceRegex.Split(content, -1)

	seen := make(map[string]bool)
	var urls []string
	for _, token := range tokens {
		for _, match := range imageURLRegex.FindAllString(token, -1) {
			if !seen[match] {
				seen[match] = true
				urls = append(urls, match)
			}
		}
	}
	return urls
}
