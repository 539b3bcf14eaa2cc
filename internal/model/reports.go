package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive   = "active"
	StatusResolved = "resolved"
	StatusArchived = "archived"
	StatusDraft    = "draft"

	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"

	MaxReportTags = 10
)

func IsValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusResolved, StatusArchived, StatusDraft:
		return true
	}
	return false
}

type Report struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Location      *string    `json:"location,omitempty"`
	Latitude      *float64   `json:"latitude,omitempty"`
	Longitude     *float64   `json:"longitude,omitempty"`
	ImageURL      *string    `json:"image_url,omitempty"`
	IsPublic      bool       `json:"is_public"`
	Status        string     `json:"status"`
	Severity      string     `json:"severity"`
	AICategory    *string    `json:"ai_category,omitempty"`
	AIConfidence  *float64   `json:"ai_confidence,omitempty"`
	AIAdvice      *string    `json:"ai_advice,omitempty"`
	AIProcessed   bool       `json:"ai_processed"`
	AIProcessedAt *time.Time `json:"ai_processed_at,omitempty"`
	Tags          []Tag      `json:"tags"`
	CommentsCount int        `json:"comments_count"`
	Author        *Author    `json:"author,omitempty"`
	DistanceKM    *float64   `json:"distance_km,omitempty"`
	Comments      []*Comment `json:"comments,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// VisibleTo reports whether viewer may read the report. uuid.Nil is an
// anonymous viewer. Drafts are readable by their author only.
func (r *Report) VisibleTo(viewer uuid.UUID) bool {
	if r.OwnedBy(viewer) {
		return true
	}
	return r.IsPublic && r.Status != StatusDraft
}

func (r *Report) OwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && r.UserID == userID
}

// HasCoordinates is true when both latitude and longitude are set.
func (r *Report) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

func (r *Report) SetAnalysis(a Analysis) {
	category, confidence, advice, at := a.Category, a.Confidence, a.Advice, a.ProcessedAt
	r.AICategory = &category
	r.AIConfidence = &confidence
	r.AIAdvice = &advice
	r.AIProcessed = true
	r.AIProcessedAt = &at
}

type CreateReportRequest struct {
	Title       string   `json:"title" validate:"required,min=5,max=200"`
	Description string   `json:"description" validate:"required,min=10,max=5000"`
	Location    *string  `json:"location" validate:"omitempty,max=200"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
	ImageURL    *string  `json:"image_url" validate:"omitempty,url,max=500"`
	IsPublic    *bool    `json:"is_public"`
	Severity    string   `json:"severity" validate:"omitempty,oneof=low medium high critical"`
	Status      string   `json:"status" validate:"omitempty,oneof=active resolved archived draft"`
	Tags        []string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=50,tagname"`
}

type UpdateReportRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=5,max=200"`
	Description *string   `json:"description" validate:"omitempty,min=10,max=5000"`
	Location    *string   `json:"location" validate:"omitempty,max=200"`
	Latitude    *float64  `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64  `json:"longitude" validate:"omitempty,longitude"`
	ImageURL    *string   `json:"image_url" validate:"omitempty,url,max=500"`
	IsPublic    *bool     `json:"is_public"`
	Severity    *string   `json:"severity" validate:"omitempty,oneof=low medium high critical"`
	Status      *string   `json:"status" validate:"omitempty,oneof=active resolved archived draft"`
	Tags        *[]string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=50,tagname"`
}

// Apply copies the set fields of req onto r.
func (req UpdateReportRequest) Apply(r *Report) {
	if req.Title != nil {
		r.Title = *req.Title
	}
	if req.Description != nil {
		r.Description = *req.Description
	}
	if req.Location != nil {
		r.Location = req.Location
	}
	if req.Latitude != nil {
		r.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		r.Longitude = req.Longitude
	}
	if req.ImageURL != nil {
		r.ImageURL = req.ImageURL
	}
	if req.IsPublic != nil {
		r.IsPublic = *req.IsPublic
	}
	if req.Severity != nil {
		r.Severity = *req.Severity
	}
	if req.Status != nil {
		r.Status = *req.Status
	}
}

type TagsRequest struct {
	Tags []string `json:"tags" validate:"required,min=1,max=10,dive,min=1,max=50,tagname"`
}

type ReportListParams struct {
	Status   string
	Category string
	Tag      string
	Search   string
	Page     int
	PerPage  int

	// UserID limits the list to one author. IncludePrivate is only set when
	// the viewer is that author.
	UserID         *uuid.UUID
	IncludePrivate bool
}

type NearbyParams struct {
	Latitude  float64
	Longitude float64
	RadiusKM  float64
	Limit     int
}

type ReportList struct {
	Reports    []Report   `json:"reports"`
	Pagination Pagination `json:"pagination"`
}
