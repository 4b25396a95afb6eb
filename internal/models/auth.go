package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StaffLoginRequest holds staff portal credentials.
type StaffLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// StudentLoginRequest holds student portal credentials.
type StudentLoginRequest struct {
	RegNo    string `json:"regNo" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and identity of the caller.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	Name        string    `json:"name"`
	Role        StaffRole `json:"role,omitempty"`
	Department  string    `json:"department,omitempty"`
	RegNo       string    `json:"regNo,omitempty"`
	Email       string    `json:"email,omitempty"`
}

// JWTClaims represents the JWT payload for access tokens. Subject is the
// staff or student ID; Department is set for department staff only.
type JWTClaims struct {
	UserID     string    `json:"user_id"`
	Role       StaffRole `json:"role,omitempty"`
	Name       string    `json:"name"`
	Department string    `json:"department,omitempty"`
	Student    bool      `json:"student,omitempty"`
	jwt.RegisteredClaims
}
