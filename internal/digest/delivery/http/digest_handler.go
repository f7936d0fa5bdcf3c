package http

import (
	"context"
	"net/http"

	"golang-market-digest/internal/digest/repository"
	"golang-market-digest/internal/digest/service"
	"golang-market-digest/pkg/logger"
	"golang-market-digest/pkg/utils"

	"github.com/labstack/echo/v4"
)

// DigestHandler handles HTTP requests for the digest service.
type DigestHandler struct {
	digestService service.DigestService
	artifactRepo  repository.ArtifactRepository
	logger        *logger.Logger
}

// NewDigestHandler creates a new DigestHandler.
func NewDigestHandler(digestService service.DigestService, artifactRepo repository.ArtifactRepository, logger *logger.Logger) *DigestHandler {
	return &DigestHandler{digestService: digestService, artifactRepo: artifactRepo, logger: logger}
}

// RegisterRoutes registers the digest routes to the Echo instance.
func (h *DigestHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	g := e.Group("/api/v1")
	g.GET("/summary/latest", h.GetLatestSummary)
	g.POST("/digest/run", h.TriggerRun)
}

// Health reports service liveness.
func (h *DigestHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// GetLatestSummary serves the most recently written top lists.
func (h *DigestHandler) GetLatestSummary(c echo.Context) error {
	summary, err := h.artifactRepo.ReadDailySummary()
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no summary available"})
	}
	return c.JSON(http.StatusOK, summary)
}

// TriggerRun starts a pipeline run in the background.
func (h *DigestHandler) TriggerRun(c echo.Context) error {
	utils.GoSafe(func() {
		if _, err := h.digestService.Run(context.Background()); err != nil {
			h.logger.Error("Triggered digest run failed", logger.ErrorField(err))
		}
	})
	return c.JSON(http.StatusAccepted, echo.Map{"status": "started"})
}
