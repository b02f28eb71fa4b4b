package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID          string      `json:"id"`
	PersonID    string      `json:"person_id"`
	Email       string      `json:"email"`
	FullName    string      `json:"full_name"`
	Role        UserRole    `json:"role"`
	ManageScope ManageScope `json:"manage_scope"`
}

// JWTClaims represents the JWT payload for access tokens. PersonID and
// ManageScope form the actor context threaded through every operation.
type JWTClaims struct {
	UserID      string      `json:"user_id"`
	PersonID    string      `json:"person_id"`
	Role        UserRole    `json:"role"`
	ManageScope ManageScope `json:"manage_scope"`
	Email       string      `json:"email"`
	jwt.RegisteredClaims
}

// Actor is the explicit actor context derived from validated claims.
type Actor struct {
	PersonID      string
	Surname       string
	PreferredName string
	Website       string
	Role          UserRole
	ManageScope   ManageScope
}

// ManagesAll reports whether the actor may manage every unit.
func (a Actor) ManagesAll() bool {
	return a.ManageScope == ManageScopeAll
}
