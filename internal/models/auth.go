package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenRequest carries the identity claims a client asks to have signed.
type TokenRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

// TokenResponse returns the signed access token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// JWTClaims is the access token payload. The token ID (jti) supports revocation.
type JWTClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}
