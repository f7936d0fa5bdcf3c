package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"golang-market-digest/internal/entity"
)

// SentimentExtraction is one company-sentiment record as returned by the
// classification model, before article back-references are attached.
type SentimentExtraction struct {
	Company      string  `json:"company"`
	Ticker       string  `json:"ticker,omitempty"`
	ExchangeHint string  `json:"exchange_hint,omitempty"`
	Stance       string  `json:"stance"`
	AdviceType   string  `json:"advice_type,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`
	Evidence     string  `json:"evidence"`
}

// SentimentExtractionResult is the expected JSON structure of a classification
// response.
type SentimentExtractionResult struct {
	Extractions []SentimentExtraction `json:"extractions"`
}

// ValidationError describes a schema violation in an externally-controlled
// payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid extraction payload: field %q %s", e.Field, e.Reason)
}

// DecodeSentimentExtractionResult strictly decodes a classification response.
// Unknown fields are rejected so malformed model output never leaks past this
// boundary.
func DecodeSentimentExtractionResult(data []byte) (*SentimentExtractionResult, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var result SentimentExtractionResult
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode extraction payload: %w", err)
	}

	for i := range result.Extractions {
		if err := result.Extractions[i].Validate(); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

// Validate checks the required fields and enumerations of one extraction.
func (e *SentimentExtraction) Validate() error {
	if e.Company == "" {
		return &ValidationError{Field: "company", Reason: "is required"}
	}
	if e.Evidence == "" {
		return &ValidationError{Field: "evidence", Reason: "is required"}
	}
	switch e.Stance {
	case entity.StancePositive, entity.StanceNegative, entity.StanceNeutral:
	default:
		return &ValidationError{Field: "stance", Reason: fmt.Sprintf("has unknown value %q", e.Stance)}
	}
	switch e.AdviceType {
	case "", entity.AdviceBuy, entity.AdviceSell, entity.AdviceHold, entity.AdviceNone:
	default:
		return &ValidationError{Field: "advice_type", Reason: fmt.Sprintf("has unknown value %q", e.AdviceType)}
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		return &ValidationError{Field: "confidence", Reason: "must be in [0,1]"}
	}
	return nil
}
