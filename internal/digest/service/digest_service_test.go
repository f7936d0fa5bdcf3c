package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang-market-digest/internal/digest/config"
	"golang-market-digest/internal/digest/dto"
	"golang-market-digest/internal/digest/repository"
	"golang-market-digest/internal/entity"
	"golang-market-digest/pkg/common"
	"golang-market-digest/pkg/logger"
	"golang-market-digest/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeedRepo struct {
	articles []entity.Article
	err      error
}

func (f *fakeFeedRepo) GetArticles(ctx context.Context) ([]entity.Article, error) {
	return f.articles, f.err
}

type fakeAIRepo struct {
	extractFn  func(article entity.Article) ([]dto.SentimentExtraction, error)
	reportFn   func(rows []entity.AggregateRow, samples []entity.Extraction) (string, error)
	gotRows    []entity.AggregateRow
	gotSamples []entity.Extraction
}

func (f *fakeAIRepo) ExtractSentiment(ctx context.Context, article entity.Article) ([]dto.SentimentExtraction, error) {
	if f.extractFn == nil {
		return nil, nil
	}
	return f.extractFn(article)
}

func (f *fakeAIRepo) GenerateMarketReport(ctx context.Context, rows []entity.AggregateRow, samples []entity.Extraction) (string, error) {
	f.gotRows = rows
	f.gotSamples = samples
	if f.reportFn == nil {
		return "rapporttext", nil
	}
	return f.reportFn(rows, samples)
}

func newTestService(t *testing.T, feeds *fakeFeedRepo, ai *fakeAIRepo, persistBefore bool) (DigestService, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Feeds.MaxArticles = 200
	cfg.Output.Dir = dir
	cfg.Output.PersistSummaryBeforeReport = persistBefore

	log := logger.NewNop()
	artifactRepo := repository.NewArtifactRepository(cfg, log)
	return NewDigestService(cfg, log, feeds, ai, artifactRepo, nil), dir
}

func reportPath(dir string) string {
	day := utils.TimeNowStockholm().Format(common.ReportDateLayout)
	return filepath.Join(dir, common.ReportsDirName, day+".md")
}

func TestRunZeroExtractionsTerminatesCleanly(t *testing.T) {
	feeds := &fakeFeedRepo{articles: []entity.Article{
		{Title: "En nyhet", URL: "http://a"},
		{Title: "En annan", URL: "http://b"},
	}}
	ai := &fakeAIRepo{
		extractFn: func(article entity.Article) ([]dto.SentimentExtraction, error) {
			return nil, nil
		},
		reportFn: func(rows []entity.AggregateRow, samples []entity.Extraction) (string, error) {
			t.Fatal("report must not be generated when there are no extractions")
			return "", nil
		},
	}

	svc, dir := newTestService(t, feeds, ai, true)
	result, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.ArticleCount)
	assert.Equal(t, 0, result.ExtractionCount)
	assert.Empty(t, result.SummaryPath)
	assert.Empty(t, result.ReportPath)

	// No file writes at all.
	assert.NoFileExists(t, filepath.Join(dir, common.TopListsFileName))
	assert.NoDirExists(t, filepath.Join(dir, common.ReportsDirName))
}

func TestRunWritesBothArtifacts(t *testing.T) {
	feeds := &fakeFeedRepo{articles: []entity.Article{
		{Source: "Testkälla", Title: "Volvo rusar", URL: "http://a", PublishedAt: "Thu, 14 Aug 2025 09:00:00 GMT"},
	}}
	ai := &fakeAIRepo{
		extractFn: func(article entity.Article) ([]dto.SentimentExtraction, error) {
			return []dto.SentimentExtraction{
				{Company: "Volvo", Ticker: "VOLV-B", Stance: entity.StancePositive, Evidence: "stark rapport"},
			}, nil
		},
	}

	svc, dir := newTestService(t, feeds, ai, true)
	result, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.ExtractionCount)
	assert.Equal(t, filepath.Join(dir, common.TopListsFileName), result.SummaryPath)
	assert.Equal(t, reportPath(dir), result.ReportPath)

	data, err := os.ReadFile(result.ReportPath)
	require.NoError(t, err)
	assert.Equal(t, "rapporttext", string(data))

	// Back-references from the source article were attached.
	require.Len(t, ai.gotSamples, 1)
	assert.Equal(t, "Testkälla", ai.gotSamples[0].Source)
	assert.Equal(t, "http://a", ai.gotSamples[0].URL)
	assert.Equal(t, "Volvo rusar", ai.gotSamples[0].Title)
	assert.Equal(t, "Thu, 14 Aug 2025 09:00:00 GMT", ai.gotSamples[0].PublishedAt)
}

func TestRunSkipsFailedExtractions(t *testing.T) {
	feeds := &fakeFeedRepo{articles: []entity.Article{
		{Title: "trasig", URL: "http://broken"},
		{Title: "hel", URL: "http://ok"},
	}}
	ai := &fakeAIRepo{
		extractFn: func(article entity.Article) ([]dto.SentimentExtraction, error) {
			if article.URL == "http://broken" {
				return nil, errors.New("boom")
			}
			return []dto.SentimentExtraction{
				{Company: "Saab", Stance: entity.StanceNeutral, Evidence: "nämns"},
			}, nil
		},
	}

	svc, _ := newTestService(t, feeds, ai, true)
	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.ExtractionCount)
}

func TestRunReportFailureKeepsSummaryWhenPersistedFirst(t *testing.T) {
	feeds := &fakeFeedRepo{articles: []entity.Article{{Title: "n", URL: "http://a"}}}
	ai := &fakeAIRepo{
		extractFn: func(article entity.Article) ([]dto.SentimentExtraction, error) {
			return []dto.SentimentExtraction{{Company: "Volvo", Stance: entity.StancePositive, Evidence: "e"}}, nil
		},
		reportFn: func(rows []entity.AggregateRow, samples []entity.Extraction) (string, error) {
			return "", errors.New("narrative service down")
		},
	}

	svc, dir := newTestService(t, feeds, ai, true)
	_, err := svc.Run(context.Background())
	require.Error(t, err)

	// The pre-persisted summary survives the failed narrative call.
	assert.FileExists(t, filepath.Join(dir, common.TopListsFileName))
	assert.NoFileExists(t, reportPath(dir))
}

func TestRunReportFailureWritesNothingWhenPersistDeferred(t *testing.T) {
	feeds := &fakeFeedRepo{articles: []entity.Article{{Title: "n", URL: "http://a"}}}
	ai := &fakeAIRepo{
		extractFn: func(article entity.Article) ([]dto.SentimentExtraction, error) {
			return []dto.SentimentExtraction{{Company: "Volvo", Stance: entity.StancePositive, Evidence: "e"}}, nil
		},
		reportFn: func(rows []entity.AggregateRow, samples []entity.Extraction) (string, error) {
			return "", errors.New("narrative service down")
		},
	}

	svc, dir := newTestService(t, feeds, ai, false)
	_, err := svc.Run(context.Background())
	require.Error(t, err)

	assert.NoFileExists(t, filepath.Join(dir, common.TopListsFileName))
	assert.NoFileExists(t, reportPath(dir))
}

func TestRunSampleCappedAtSixty(t *testing.T) {
	var articles []entity.Article
	for i := 0; i < 80; i++ {
		articles = append(articles, entity.Article{Title: string(rune('a' + i%26)), URL: "http://u/" + string(rune('a'+i%26)) + string(rune('0'+i/26))})
	}
	feeds := &fakeFeedRepo{articles: articles}
	ai := &fakeAIRepo{
		extractFn: func(article entity.Article) ([]dto.SentimentExtraction, error) {
			return []dto.SentimentExtraction{{Company: article.Title, Stance: entity.StanceNeutral, Evidence: "e"}}, nil
		},
	}

	svc, _ := newTestService(t, feeds, ai, true)
	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, ai.gotSamples, 60)
	// The full aggregate table is passed through, not just the top lists.
	assert.Greater(t, len(ai.gotRows), 10)
}

func TestRunRerunOverwritesArtifacts(t *testing.T) {
	feeds := &fakeFeedRepo{articles: []entity.Article{{Title: "n", URL: "http://a"}}}
	ai := &fakeAIRepo{
		extractFn: func(article entity.Article) ([]dto.SentimentExtraction, error) {
			return []dto.SentimentExtraction{{Company: "Volvo", Stance: entity.StancePositive, Evidence: "e"}}, nil
		},
	}

	svc, dir := newTestService(t, feeds, ai, true)

	first, err := svc.Run(context.Background())
	require.NoError(t, err)
	second, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.SummaryPath, second.SummaryPath)
	assert.Equal(t, first.ReportPath, second.ReportPath)

	data, err := os.ReadFile(filepath.Join(dir, common.TopListsFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"key":"volvo"`)
}

func TestRunFeedFailureIsFatal(t *testing.T) {
	feeds := &fakeFeedRepo{err: errors.New("no feed list")}
	svc, _ := newTestService(t, feeds, &fakeAIRepo{}, true)

	_, err := svc.Run(context.Background())
	require.Error(t, err)
}
