package model

import (
	"time"

	"github.com/google/uuid"
)

// AI categories
const (
	CategoryPollution          = "pollution"
	CategoryClimateChange      = "climate-change"
	CategoryDeforestation      = "deforestation"
	CategoryWaterIssues        = "water-issues"
	CategoryAirQuality         = "air-quality"
	CategoryWildlife           = "wildlife"
	CategoryEnvironmentalIssue = "environmental-issue"
)

var Categories = []string{
	CategoryPollution,
	CategoryClimateChange,
	CategoryDeforestation,
	CategoryWaterIssues,
	CategoryAirQuality,
	CategoryWildlife,
	CategoryEnvironmentalIssue,
}

func IsValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// classification sources
const (
	SourceProviderPrefix = "ai:"
	SourceKeywordMatch   = "keyword_match"
	SourceDefault        = "default"
)

type Classification struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

type Analysis struct {
	Classification
	Advice      string    `json:"advice"`
	ProcessedAt time.Time `json:"processed_at"`
}

type EcoTip struct {
	Title       string `json:"title"`
	Tag         string `json:"tag"`
	Description string `json:"description"`
	ImpactText  string `json:"impact_text"`
	Difficulty  string `json:"difficulty"`
}

type CategorizeTextRequest struct {
	Text string `json:"text" validate:"required,min=3,max=5000"`
}

type CategorizeTextResponse struct {
	Classification
	Suggestions []string `json:"suggestions"`
}

type GreenAdviceResponse struct {
	Category string  `json:"category"`
	Location *string `json:"location,omitempty"`
	Advice   string  `json:"advice"`
}

type GreenAdviceRequest struct {
	Category string  `json:"category" validate:"omitempty,max=50"`
	Location *string `json:"location" validate:"omitempty,max=200"`
}

type ReportAnalysis struct {
	ReportID uuid.UUID `json:"report_id"`
	Analysis
}
