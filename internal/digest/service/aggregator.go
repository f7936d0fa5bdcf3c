package service

import (
	"sort"
	"strings"

	"golang-market-digest/internal/entity"
)

// AggregateKey computes the grouping identity for one extraction: the ticker
// when present, otherwise the lowercased company name.
func AggregateKey(e entity.Extraction) string {
	if ticker := strings.TrimSpace(e.Ticker); ticker != "" {
		return ticker
	}
	return strings.ToLower(e.Company)
}

// Aggregate groups extractions by identity key and counts stance occurrences.
// Rows are returned in first-seen key order so downstream ranking is
// deterministic.
func Aggregate(records []entity.Extraction) []entity.AggregateRow {
	index := make(map[string]int, len(records))
	rows := make([]entity.AggregateRow, 0, len(records))

	for _, rec := range records {
		key := AggregateKey(rec)
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, entity.AggregateRow{Key: key})
		}
		switch rec.Stance {
		case entity.StancePositive:
			rows[i].Positive++
		case entity.StanceNegative:
			rows[i].Negative++
		case entity.StanceNeutral:
			rows[i].Neutral++
		}
	}

	for i := range rows {
		rows[i].Net = rows[i].Positive - rows[i].Negative
	}
	return rows
}

// RankTopPositive sorts by positive count descending with higher net breaking
// ties, and returns at most n rows.
func RankTopPositive(rows []entity.AggregateRow, n int) []entity.AggregateRow {
	ranked := make([]entity.AggregateRow, len(rows))
	copy(ranked, rows)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Positive != ranked[j].Positive {
			return ranked[i].Positive > ranked[j].Positive
		}
		return ranked[i].Net > ranked[j].Net
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// RankTopNegative sorts by negative count descending with lower net breaking
// ties, and returns at most n rows.
func RankTopNegative(rows []entity.AggregateRow, n int) []entity.AggregateRow {
	ranked := make([]entity.AggregateRow, len(rows))
	copy(ranked, rows)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Negative != ranked[j].Negative {
			return ranked[i].Negative > ranked[j].Negative
		}
		return ranked[i].Net < ranked[j].Net
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
