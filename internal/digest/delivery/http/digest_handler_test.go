package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang-market-digest/internal/digest/dto"
	"golang-market-digest/internal/entity"
	"golang-market-digest/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDigestService struct {
	mu   sync.Mutex
	runs int
}

func (f *fakeDigestService) Run(ctx context.Context) (*dto.RunResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	return &dto.RunResult{}, nil
}

func (f *fakeDigestService) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

type fakeArtifactRepo struct {
	summary *entity.DailySummary
	err     error
}

func (f *fakeArtifactRepo) WriteDailySummary(summary *entity.DailySummary) (string, error) {
	return "", nil
}

func (f *fakeArtifactRepo) WriteReport(text string, day time.Time) (string, error) {
	return "", nil
}

func (f *fakeArtifactRepo) ReadDailySummary() (*entity.DailySummary, error) {
	return f.summary, f.err
}

func newTestEcho(svc *fakeDigestService, repo *fakeArtifactRepo) *echo.Echo {
	e := echo.New()
	handler := NewDigestHandler(svc, repo, logger.NewNop())
	handler.RegisterRoutes(e)
	return e
}

func TestHealth(t *testing.T) {
	e := newTestEcho(&fakeDigestService{}, &fakeArtifactRepo{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestGetLatestSummary(t *testing.T) {
	repo := &fakeArtifactRepo{
		summary: &entity.DailySummary{
			Positives: []entity.AggregateRow{{Key: "VOLV-B", Positive: 3, Negative: 1, Net: 2}},
		},
	}
	e := newTestEcho(&fakeDigestService{}, repo)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/summary/latest", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "VOLV-B")
}

func TestGetLatestSummaryNotFound(t *testing.T) {
	repo := &fakeArtifactRepo{err: errors.New("no summary yet")}
	e := newTestEcho(&fakeDigestService{}, repo)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/summary/latest", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTriggerRun(t *testing.T) {
	svc := &fakeDigestService{}
	e := newTestEcho(svc, &fakeArtifactRepo{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/digest/run", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)

	assert.Eventually(t, func() bool {
		return svc.runCount() == 1
	}, time.Second, 10*time.Millisecond)
}
