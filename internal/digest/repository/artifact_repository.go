package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang-market-digest/internal/digest/config"
	"golang-market-digest/internal/entity"
	"golang-market-digest/pkg/common"
	"golang-market-digest/pkg/logger"
)

// artifactRepository persists the daily artifacts under the configured output
// directory.
type artifactRepository struct {
	cfg    *config.Config
	logger *logger.Logger
}

// NewArtifactRepository creates a new instance of artifactRepository.
func NewArtifactRepository(cfg *config.Config, log *logger.Logger) ArtifactRepository {
	return &artifactRepository{cfg: cfg, logger: log}
}

// WriteDailySummary writes top_lists.json, overwriting any prior content.
func (r *artifactRepository) WriteDailySummary(summary *entity.DailySummary) (string, error) {
	if err := os.MkdirAll(r.cfg.Output.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to marshal daily summary: %w", err)
	}

	path := filepath.Join(r.cfg.Output.Dir, common.TopListsFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write daily summary: %w", err)
	}
	return path, nil
}

// WriteReport writes the narrative report keyed by the given calendar day,
// overwriting any existing report for the same day.
func (r *artifactRepository) WriteReport(text string, day time.Time) (string, error) {
	dir := filepath.Join(r.cfg.Output.Dir, common.ReportsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	path := filepath.Join(dir, day.Format(common.ReportDateLayout)+".md")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// ReadDailySummary reads the most recently written top_lists.json.
func (r *artifactRepository) ReadDailySummary() (*entity.DailySummary, error) {
	path := filepath.Join(r.cfg.Output.Dir, common.TopListsFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read daily summary: %w", err)
	}

	var summary entity.DailySummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal daily summary: %w", err)
	}
	return &summary, nil
}
