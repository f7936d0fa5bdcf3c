package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang-market-digest/internal/digest/config"
	"golang-market-digest/internal/digest/dto"
	"golang-market-digest/internal/entity"
	"golang-market-digest/pkg/logger"
	"golang-market-digest/pkg/ratelimit"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiAIRepository is an implementation of AIRepository that uses the Google
// Gemini API.
type geminiAIRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository. The
// genai client is optional; when nil, token budgeting is skipped.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (AIRepository, error) {
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	tokenLimiter := ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute)

	return &geminiAIRepository{
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		tokenLimiter:   tokenLimiter,
		genAiClient:    genAiClient,
	}, nil
}

// ExtractSentiment classifies one article into company-sentiment extractions.
func (r *geminiAIRepository) ExtractSentiment(ctx context.Context, article entity.Article) ([]dto.SentimentExtraction, error) {
	prompt := BuildExtractSentimentPrompt(article)

	geminiResp, err := r.executeGeminiAIRequest(ctx, prompt, r.cfg.Gemini.MaxExtractionTokens, true)
	if err != nil {
		return nil, err
	}

	rawJSON, err := responseText(geminiResp)
	if err != nil {
		return nil, err
	}
	rawJSON = strings.Trim(rawJSON, "`json\n`")

	result, err := dto.DecodeSentimentExtractionResult([]byte(rawJSON))
	if err != nil {
		return nil, err
	}
	return result.Extractions, nil
}

// GenerateMarketReport produces the narrative daily report. The returned prose
// is used verbatim.
func (r *geminiAIRepository) GenerateMarketReport(ctx context.Context, rows []entity.AggregateRow, samples []entity.Extraction) (string, error) {
	prompt, err := BuildMarketReportPrompt(rows, samples)
	if err != nil {
		return "", err
	}

	geminiResp, err := r.executeGeminiAIRequest(ctx, prompt, r.cfg.Gemini.MaxReportTokens, false)
	if err != nil {
		return "", err
	}

	return responseText(geminiResp)
}

func (r *geminiAIRepository) executeGeminiAIRequest(ctx context.Context, prompt string, maxOutputTokens int, jsonResponse bool) (*dto.GeminiAPIResponse, error) {
	if r.genAiClient != nil {
		contents := []*genai.Content{
			genai.NewContentFromText(prompt, "user"),
		}
		geminiTokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Gemini.Model, contents, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to count tokens: %w", err)
		}

		r.logger.Debug("Gemini token count",
			logger.IntField("total_tokens", int(geminiTokenResp.TotalTokens)),
			logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
		)

		if err := r.tokenLimiter.Wait(ctx, int(geminiTokenResp.TotalTokens)); err != nil {
			return nil, fmt.Errorf("failed to wait for token limit: %w", err)
		}
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	payload := dto.GeminiAPIRequest{
		Contents: []dto.Content{{Parts: []dto.Part{{Text: prompt}}}},
		GenerationConfig: &dto.GenerationConfig{
			MaxOutputTokens: maxOutputTokens,
		},
	}
	if jsonResponse {
		payload.GenerationConfig.ResponseMIMEType = "application/json"
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		r.logger.Error("Failed to marshal payload", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	apiURL := fmt.Sprintf("%s/%s:generateContent?key=%s", r.cfg.Gemini.BaseURL, r.cfg.Gemini.Model, r.cfg.Gemini.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		r.logger.Error("Failed to create new http request", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("Failed to send request to Gemini API", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to send request to Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.logger.Error("Received non-OK response from Gemini API", logger.IntField("status_code", resp.StatusCode))
		return nil, fmt.Errorf("received non-OK response from Gemini API: %d - %s", resp.StatusCode, string(body))
	}

	var geminiResp dto.GeminiAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		r.logger.Error("Failed to decode response body", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	return &geminiResp, nil
}

func responseText(resp *dto.GeminiAPIResponse) (string, error) {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("invalid response from Gemini API: no content found")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
