package models

import (
	"time"
)

type TokenRequest struct {
	APIKey string `json:"api_key" validate:"required"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	IsAdmin   bool      `json:"is_admin"`
}
