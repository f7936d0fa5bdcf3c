package entity

import "time"

// AggregateRow is one company identity's daily stance summary. Key is the
// ticker when present, otherwise the lowercased company name.
type AggregateRow struct {
	Key      string `json:"key"`
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
	Neutral  int    `json:"neutral"`
	Net      int    `json:"net"`
}

// DailySummary is the persisted ranked-lists artifact.
type DailySummary struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Positives   []AggregateRow `json:"positives"`
	Negatives   []AggregateRow `json:"negatives"`
}
