package nostr

import (
	"strings"

	"slidestr/internal/types"
)

// BuildSlides converts a time-ordered event list into the final slide
// deck. Image URLs are deduplicated globally across the whole thread;
// the first event to carry a URL owns its slide. The caption is the
// event content with the first occurrence of the URL removed.
//
// onProgress is invoked after every event scanned, including events
// that contributed no new slide, so the caller sees liveness
// proportional to events processed. Passing nil disables reporting.
//
// Slide IDs are derived from (event id, image URL), so rebuilding from
// the same input yields an identical deck.
func BuildSlides(events []types.Event, onProgress func(count int)) []types.Slide {
	slides := []types.Slide{}
	seenImageURLs := make(map[string]bool)

	for _, evt := range events {
		for _, imgURL := range ExtractImageURLs(evt.Content) {
			if seenImageURLs[imgURL] {
				continue
			}
			seenImageURLs[imgURL] = true

			// Remove the image URL from the caption so it doesn't
			// show up twice on the slide.
			caption := strings.TrimSpace(strings.Replace(evt.Content, imgURL, "", 1))

			slides = append(slides, types.Slide{
				ID:           evt.ID + "-" + imgURL,
				ImageURL:     imgURL,
				Content:      caption,
				AuthorPubkey: evt.PubKey,
				CreatedAt:    evt.CreatedAt,
				EventID:      evt.ID,
			})
		}

		if onProgress != nil {
			onProgress(len(slides))
		}
	}

	return slides
}
