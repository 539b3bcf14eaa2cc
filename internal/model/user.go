package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash *string   `json:"-"`
	FirstName    *string   `json:"first_name,omitempty"`
	LastName     *string   `json:"last_name,omitempty"`
	Bio          *string   `json:"bio,omitempty"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	Location     *string   `json:"location,omitempty"`
	AuthProvider string    `json:"auth_provider,omitempty"`
	IsVerified   bool      `json:"is_verified"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName joins first and last name, falling back to the username.
func (u User) FullName() string {
	var name string
	if u.FirstName != nil {
		name = *u.FirstName
	}
	if u.LastName != nil && *u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += *u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}

// PublicView strips fields only the account owner may see.
func (u User) PublicView() User {
	u.Email = ""
	u.AuthProvider = ""
	return u
}

// Author is the compact user summary embedded in reports and comments.
type Author struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FirstName *string   `json:"first_name,omitempty"`
	LastName  *string   `json:"last_name,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

type UserStats struct {
	UserID              uuid.UUID `json:"user_id"`
	ReportsCount        int       `json:"reports_count"`
	PublicReportsCount  int       `json:"public_reports_count"`
	CommentsCount       int       `json:"comments_count"`
	PrivateReportsCount *int      `json:"private_reports_count,omitempty"`
	DraftReportsCount   *int      `json:"draft_reports_count,omitempty"`
	MemberSince         time.Time `json:"member_since"`
}

type UpdateProfileRequest struct {
	Username        *string `json:"username" validate:"omitempty,min=3,max=80,username"`
	Email           *string `json:"email" validate:"omitempty,email,max=120"`
	FirstName       *string `json:"first_name" validate:"omitempty,max=50"`
	LastName        *string `json:"last_name" validate:"omitempty,max=50"`
	Bio             *string `json:"bio" validate:"omitempty,max=500"`
	Location        *string `json:"location" validate:"omitempty,max=100"`
	AvatarURL       *string `json:"avatar_url" validate:"omitempty,url,max=500"`
	CurrentPassword *string `json:"current_password"`
	NewPassword     *string `json:"new_password" validate:"omitempty,min=8,max=128"`
}

type UserListParams struct {
	Search  string
	Page    int
	PerPage int
}

type UserList struct {
	Users      []User     `json:"users"`
	Pagination Pagination `json:"pagination"`
}
