package model

import "time"

type SignupRequest struct {
	Username  string  `json:"username" validate:"required,min=3,max=80,username"`
	Email     string  `json:"email" validate:"required,email,max=120"`
	Password  string  `json:"password" validate:"required,min=8,max=128"`
	FirstName *string `json:"first_name" validate:"omitempty,max=50"`
	LastName  *string `json:"last_name" validate:"omitempty,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleAuthRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
}

type AuthResponse struct {
	User         User      `json:"user"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}
