package types

// Slide is one presentation unit derived from exactly one (event, image URL)
// pair. Slides are immutable once built; the deck handed to the presentation
// layer is ordered by thread time, ties kept in retrieval order.
type Slide struct {
	ID           string `json:"id"`
	ImageURL     string `json:"imageUrl"`
	Content      string `json:"content"`
	AuthorPubkey string `json:"authorPubkey"`
	CreatedAt    int64  `json:"createdAt"`
	EventID      string `json:"eventId"`
}
