package repository

import (
	"context"
	"time"

	"golang-market-digest/internal/digest/dto"
	"golang-market-digest/internal/entity"
)

// FeedRepository produces normalized articles from the configured feed list.
type FeedRepository interface {
	GetArticles(ctx context.Context) ([]entity.Article, error)
}

// AIRepository wraps the external classification and narrative services.
type AIRepository interface {
	ExtractSentiment(ctx context.Context, article entity.Article) ([]dto.SentimentExtraction, error)
	GenerateMarketReport(ctx context.Context, rows []entity.AggregateRow, samples []entity.Extraction) (string, error)
}

// ArtifactRepository persists the daily artifacts to the filesystem.
type ArtifactRepository interface {
	WriteDailySummary(summary *entity.DailySummary) (string, error)
	WriteReport(text string, day time.Time) (string, error)
	ReadDailySummary() (*entity.DailySummary, error)
}
