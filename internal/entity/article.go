package entity

// Article is one normalized news item produced by the feed ingestor.
type Article struct {
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	FullText    string `json:"full_text"`
}
