package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bwise1/earthlens/internal/model"
)

var (
	ErrEmptyResponse   = errors.New("empty response from provider")
	ErrUnknownCategory = errors.New("provider returned an unknown category")
)

// stripFences removes a surrounding ``` or ```json code fence.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extract returns the outermost opening..closing span of s.
func extract(s string, opening, closing byte) string {
	start := strings.IndexByte(s, opening)
	end := strings.LastIndexByte(s, closing)
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}

func parseClassification(raw string) (model.Classification, error) {
	raw = stripFences(raw)
	if raw == "" {
		return model.Classification{}, ErrEmptyResponse
	}

	var out struct {
		Category   string   `json:"category"`
		Confidence *float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(extract(raw, '{', '}')), &out); err != nil {
		return model.Classification{}, fmt.Errorf("decode classification: %w", err)
	}

	category := strings.ToLower(strings.TrimSpace(out.Category))
	if !model.IsValidCategory(category) {
		return model.Classification{}, fmt.Errorf("%w: %q", ErrUnknownCategory, out.Category)
	}

	confidence := 0.5
	if out.Confidence != nil {
		confidence = clamp(*out.Confidence, 0, 1)
	}
	return model.Classification{Category: category, Confidence: confidence}, nil
}

func parseEcoTips(raw string) ([]model.EcoTip, error) {
	raw = stripFences(raw)
	if raw == "" {
		return nil, ErrEmptyResponse
	}

	var tips []model.EcoTip
	if err := json.Unmarshal([]byte(extract(raw, '[', ']')), &tips); err != nil {
		return nil, fmt.Errorf("decode eco tips: %w", err)
	}

	valid := tips[:0]
	for _, tip := range tips {
		if strings.TrimSpace(tip.Title) != "" && strings.TrimSpace(tip.Description) != "" {
			valid = append(valid, tip)
		}
	}
	if len(valid) == 0 {
		return nil, ErrEmptyResponse
	}
	return valid, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
