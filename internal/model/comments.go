package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID           uuid.UUID  `json:"id"`
	Content      string     `json:"content"`
	IsEdited     bool       `json:"is_edited"`
	UserID       uuid.UUID  `json:"user_id"`
	ReportID     uuid.UUID  `json:"report_id"`
	ParentID     *uuid.UUID `json:"parent_id,omitempty"`
	Author       *Author    `json:"author,omitempty"`
	Replies      []*Comment `json:"replies,omitempty"`
	RepliesCount int        `json:"replies_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type CreateCommentRequest struct {
	ReportID uuid.UUID  `json:"report_id" validate:"required"`
	ParentID *uuid.UUID `json:"parent_id"`
	Content  string     `json:"content" validate:"required,min=1,max=2000"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

type CommentThread struct {
	Comments      []*Comment `json:"comments"`
	TotalComments int        `json:"total_comments"`
}

// BuildCommentTree nests a flat list of comments under their parents.
// Top-level comments come newest first, replies oldest first. Comments whose
// parent is not in the list are treated as top-level.
func BuildCommentTree(flat []*Comment) []*Comment {
	byID := make(map[uuid.UUID]*Comment, len(flat))
	for _, c := range flat {
		c.Replies = nil
		byID[c.ID] = c
	}

	roots := make([]*Comment, 0)
	for _, c := range flat {
		if c.ParentID != nil {
			if parent, ok := byID[*c.ParentID]; ok && parent != c {
				parent.Replies = append(parent.Replies, c)
				continue
			}
		}
		roots = append(roots, c)
	}

	for _, c := range flat {
		c.RepliesCount = len(c.Replies)
		sort.SliceStable(c.Replies, func(i, j int) bool {
			return c.Replies[i].CreatedAt.Before(c.Replies[j].CreatedAt)
		})
	}
	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].CreatedAt.After(roots[j].CreatedAt)
	})
	return roots
}
