package repository

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"golang-market-digest/internal/digest/config"
	"golang-market-digest/internal/entity"
	"golang-market-digest/pkg/logger"
	"golang-market-digest/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
	"github.com/patrickmn/go-cache"
)

// Summaries arrive with embedded markup; this is an intentionally lossy strip,
// not an HTML parser.
var htmlTagPattern = regexp.MustCompile(`<[^<]+?>`)

// feedsRepository is a FeedRepository backed by a feeds.txt list of RSS URLs.
type feedsRepository struct {
	cfg           *config.Config
	logger        *logger.Logger
	parser        *gofeed.Parser
	client        *http.Client
	inmemoryCache *cache.Cache
}

// NewFeedsRepository creates a new instance of feedsRepository.
func NewFeedsRepository(cfg *config.Config, log *logger.Logger) FeedRepository {
	ttl := cfg.Feeds.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &feedsRepository{
		cfg:    cfg,
		logger: log,
		parser: gofeed.NewParser(),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		inmemoryCache: cache.New(ttl, 2*ttl),
	}
}

// GetArticles fetches every configured feed and returns the normalized
// articles in feed-then-entry order. Feed failures are logged and skipped.
func (r *feedsRepository) GetArticles(ctx context.Context) ([]entity.Article, error) {
	feedURLs, err := r.readFeedList(r.cfg.Feeds.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed list: %w", err)
	}

	var articles []entity.Article
	for _, feedURL := range feedURLs {
		if !utils.ShouldContinue(ctx, r.logger) {
			break
		}

		feed, err := r.fetchFeed(ctx, feedURL)
		if err != nil {
			r.logger.Error("Failed to fetch RSS feed", logger.ErrorField(err), logger.StringField("url", feedURL))
			continue
		}

		source := feed.Title
		if source == "" {
			source = "RSS"
		}

		items := feed.Items
		if len(items) > r.cfg.Feeds.MaxEntriesPerFeed {
			items = items[:r.cfg.Feeds.MaxEntriesPerFeed]
		}

		for _, item := range items {
			published := item.Published
			if published == "" {
				published = item.Updated
			}
			article := entity.Article{
				Source:      source,
				URL:         item.Link,
				PublishedAt: published,
				Title:       utils.CleanToValidUTF8(item.Title),
				Snippet:     StripHTMLTags(item.Description),
			}
			if r.cfg.Feeds.FetchFullText && article.URL != "" {
				fullText, err := r.fetchFullText(ctx, article.URL)
				if err != nil {
					r.logger.Warn("Failed to fetch article full text", logger.ErrorField(err), logger.StringField("url", article.URL))
				} else {
					article.FullText = fullText
				}
			}
			articles = append(articles, article)
		}
	}

	return articles, nil
}

// readFeedList reads one feed URL per line, skipping blanks and # comments.
func (r *feedsRepository) readFeedList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return urls, nil
}

func (r *feedsRepository) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	if cached, found := r.inmemoryCache.Get(feedURL); found {
		return cached.(*gofeed.Feed), nil
	}

	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	r.inmemoryCache.Set(feedURL, feed, cache.DefaultExpiration)
	return feed, nil
}

// fetchFullText downloads the article page and extracts its readable body.
func (r *feedsRepository) fetchFullText(ctx context.Context, articleURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", articleURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch article, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse article content: %w", err)
	}

	docHTML, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(doc.Content())))
	if err != nil {
		return "", fmt.Errorf("failed to parse extracted content: %w", err)
	}

	text := strings.Join(strings.Fields(docHTML.Text()), " ")
	return utils.SafeText(text), nil
}

// StripHTMLTags removes "<...>" sequences from s and trims the result.
func StripHTMLTags(s string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
}
