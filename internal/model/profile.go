package model

import (
	"time"

	"github.com/google/uuid"
)

type Impact struct {
	ReportsSubmitted int `json:"reports_submitted"`
	CommentsMade     int `json:"comments_made"`
	PublicReports    int `json:"public_reports"`
}

type RecentReport struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type RecentComment struct {
	ID        uuid.UUID `json:"id"`
	ReportID  uuid.UUID `json:"report_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type RecentActivity struct {
	Reports  []RecentReport  `json:"reports"`
	Comments []RecentComment `json:"comments"`
}

type Profile struct {
	User
	FullName       string         `json:"full_name"`
	ReportsCount   int            `json:"reports_count"`
	CommentsCount  int            `json:"comments_count"`
	Impact         Impact         `json:"impact"`
	TopCategory    *string        `json:"top_category"`
	RecentActivity RecentActivity `json:"recent_activity"`
}

const (
	ActivityReport  = "report"
	ActivityComment = "comment"

	ActivitySnippetLength = 100
)

type ActivityItem struct {
	Type      string    `json:"type"`
	ID        uuid.UUID `json:"id"`
	ReportID  uuid.UUID `json:"report_id"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Snippet shortens s to ActivitySnippetLength runes, appending "..." when cut.
func Snippet(s string) string {
	r := []rune(s)
	if len(r) <= ActivitySnippetLength {
		return s
	}
	return string(r[:ActivitySnippetLength]) + "..."
}
