package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang-market-digest/internal/digest/config"
	"golang-market-digest/internal/digest/dto"
	"golang-market-digest/internal/digest/repository"
	"golang-market-digest/internal/entity"
	"golang-market-digest/pkg/logger"
	"golang-market-digest/pkg/telegram"
	"golang-market-digest/pkg/utils"
)

const (
	topListSize = 10
	sampleSize  = 60
)

// DigestService runs the daily market digest pipeline.
type DigestService interface {
	Run(ctx context.Context) (*dto.RunResult, error)
}

type digestService struct {
	cfg              *config.Config
	logger           *logger.Logger
	feedsRepo        repository.FeedRepository
	aiRepo           repository.AIRepository
	artifactRepo     repository.ArtifactRepository
	telegramNotifier telegram.Notifier
	runMu            sync.Mutex
}

// NewDigestService creates a new DigestService. The Telegram notifier is
// optional and may be nil.
func NewDigestService(
	cfg *config.Config,
	log *logger.Logger,
	feedsRepo repository.FeedRepository,
	aiRepo repository.AIRepository,
	artifactRepo repository.ArtifactRepository,
	telegramNotifier telegram.Notifier,
) DigestService {
	return &digestService{
		cfg:              cfg,
		logger:           log,
		feedsRepo:        feedsRepo,
		aiRepo:           aiRepo,
		artifactRepo:     artifactRepo,
		telegramNotifier: telegramNotifier,
	}
}

// Run executes one full pipeline pass: ingest, deduplicate, extract,
// aggregate, compose the report and persist the artifacts. Runs never overlap.
func (s *digestService) Run(ctx context.Context) (*dto.RunResult, error) {
	if !s.runMu.TryLock() {
		return nil, fmt.Errorf("a digest run is already in progress")
	}
	defer s.runMu.Unlock()

	articles, err := s.feedsRepo.GetArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest feeds: %w", err)
	}

	articles = DeduplicateArticles(articles, s.cfg.Feeds.MaxArticles)
	s.logger.Info("Ingested articles", logger.IntField("count", len(articles)))

	records := s.extractAll(ctx, articles)

	result := &dto.RunResult{
		ArticleCount:    len(articles),
		ExtractionCount: len(records),
	}

	if len(records) == 0 {
		s.logger.Info("No extractions today, finishing without a report")
		return result, nil
	}

	rows := Aggregate(records)
	summary := &entity.DailySummary{
		GeneratedAt: time.Now().UTC(),
		Positives:   RankTopPositive(rows, topListSize),
		Negatives:   RankTopNegative(rows, topListSize),
	}

	if s.cfg.Output.PersistSummaryBeforeReport {
		result.SummaryPath, err = s.artifactRepo.WriteDailySummary(summary)
		if err != nil {
			return nil, fmt.Errorf("failed to persist daily summary: %w", err)
		}
	}

	samples := records
	if len(samples) > sampleSize {
		samples = samples[:sampleSize]
	}

	reportText, err := s.aiRepo.GenerateMarketReport(ctx, rows, samples)
	if err != nil {
		return nil, fmt.Errorf("failed to generate market report: %w", err)
	}

	if !s.cfg.Output.PersistSummaryBeforeReport {
		result.SummaryPath, err = s.artifactRepo.WriteDailySummary(summary)
		if err != nil {
			return nil, fmt.Errorf("failed to persist daily summary: %w", err)
		}
	}

	result.ReportPath, err = s.artifactRepo.WriteReport(reportText, utils.TimeNowStockholm())
	if err != nil {
		return nil, fmt.Errorf("failed to persist report: %w", err)
	}

	s.notify(summary)

	s.logger.Info("Digest run completed",
		logger.StringField("summary_path", result.SummaryPath),
		logger.StringField("report_path", result.ReportPath),
	)
	return result, nil
}

// extractAll classifies each article sequentially. Per-article failures are
// logged and skipped.
func (s *digestService) extractAll(ctx context.Context, articles []entity.Article) []entity.Extraction {
	var records []entity.Extraction
	for _, article := range articles {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}

		extractions, err := s.aiRepo.ExtractSentiment(ctx, article)
		if err != nil {
			s.logger.Error("Failed to extract sentiment", logger.ErrorField(err), logger.StringField("url", article.URL))
			continue
		}

		for _, ex := range extractions {
			records = append(records, entity.Extraction{
				Company:      ex.Company,
				Ticker:       ex.Ticker,
				ExchangeHint: ex.ExchangeHint,
				Stance:       ex.Stance,
				AdviceType:   ex.AdviceType,
				Confidence:   ex.Confidence,
				Evidence:     ex.Evidence,
				Source:       article.Source,
				URL:          article.URL,
				PublishedAt:  article.PublishedAt,
				Title:        article.Title,
			})
		}
	}
	return records
}

func (s *digestService) notify(summary *entity.DailySummary) {
	if s.telegramNotifier == nil || !s.cfg.Telegram.Enabled {
		return
	}
	for _, msg := range telegram.FormatDailySummaryForTelegram(summary) {
		if err := s.telegramNotifier.SendMessage(msg); err != nil {
			s.logger.Error("Failed to send Telegram notification", logger.ErrorField(err))
			return
		}
	}
}
