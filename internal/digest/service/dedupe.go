package service

import (
	"strings"

	"golang-market-digest/internal/entity"
)

type articleKey struct {
	title string
	url   string
}

// DeduplicateArticles drops articles whose (lowercased trimmed title, url)
// pair was already seen, preserving first-seen order, then caps the result at
// maxArticles. The cap is position-based, not a quality filter.
func DeduplicateArticles(articles []entity.Article, maxArticles int) []entity.Article {
	seen := make(map[articleKey]struct{}, len(articles))
	uniq := make([]entity.Article, 0, len(articles))

	for _, a := range articles {
		key := articleKey{
			title: strings.ToLower(strings.TrimSpace(a.Title)),
			url:   a.URL,
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		uniq = append(uniq, a)
	}

	if maxArticles > 0 && len(uniq) > maxArticles {
		uniq = uniq[:maxArticles]
	}
	return uniq
}
