package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

const DefaultTagColor = "#007bff"

type Tag struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	Color        string    `json:"color"`
	IsActive     bool      `json:"is_active"`
	ReportsCount int       `json:"reports_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreateTagRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=50,tagname"`
	Description *string `json:"description" validate:"omitempty,max=200"`
	Color       string  `json:"color" validate:"omitempty,hexcolor,len=7"`
}

type UpdateTagRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=50,tagname"`
	Description *string `json:"description" validate:"omitempty,max=200"`
	Color       *string `json:"color" validate:"omitempty,hexcolor,len=7"`
	IsActive    *bool   `json:"is_active"`
}

type TagListParams struct {
	Search  string
	Page    int
	PerPage int
}

type TagList struct {
	Tags       []Tag      `json:"tags"`
	Pagination Pagination `json:"pagination"`
}

// NormalizeTagName trims, collapses inner whitespace and case-folds a tag
// name so that equivalent spellings map to one row.
func NormalizeTagName(name string) string {
	// a Caser is stateful, so one is built per call
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

// NormalizeTagNames normalizes names, dropping blanks and duplicates while
// keeping first-seen order.
func NormalizeTagNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = NormalizeTagName(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
