package dto

import (
	"strings"
	"time"

	"github.com/faya/preorder-api/internal/domain"
)

const (
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72
	maxFullName      = 100
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the registration payload.
func (r RegisterRequest) Validate() error {
	var v violations
	switch {
	case blank(r.FullName):
		v.add("fullName", r.FullName, "Full name is required")
	case runeLen(strings.TrimSpace(r.FullName)) > maxFullName:
		v.add("fullName", r.FullName, "Full name must be at most 100 characters")
	}
	switch {
	case blank(r.Email):
		v.add("email", r.Email, "Email is required")
	case !validEmail(strings.TrimSpace(r.Email)):
		v.add("email", r.Email, "Please provide a valid email format")
	}
	switch {
	case blank(r.Password):
		v.add("password", r.Password, "Password is required")
	case runeLen(r.Password) < minPasswordLength:
		v.add("password", r.Password, "Password must be at least 8 characters long")
	case len(r.Password) > maxPasswordBytes:
		v.add("password", r.Password, "Password must be at most 72 bytes long")
	}
	return v.err()
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the login payload.
func (r LoginRequest) Validate() error {
	var v violations
	if blank(r.Email) {
		v.add("email", r.Email, "Email is required")
	}
	if blank(r.Password) {
		v.add("password", r.Password, "Password is required")
	}
	return v.err()
}

// RefreshRequest payload for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Validate checks the refresh payload.
func (r RefreshRequest) Validate() error {
	var v violations
	if blank(r.RefreshToken) {
		v.add("refreshToken", nil, "Refresh token is required")
	}
	return v.err()
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string      `json:"id"`
	FullName  string      `json:"fullName"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

// NewUserResponse projects a user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	TokenType        string       `json:"tokenType"`
	AccessToken      string       `json:"accessToken"`
	ExpiresAt        time.Time    `json:"expiresAt"`
	ExpiresIn        int64        `json:"expiresIn"`
	RefreshToken     string       `json:"refreshToken"`
	RefreshExpiresAt time.Time    `json:"refreshExpiresAt"`
	User             UserResponse `json:"user"`
}

// NewAuthResponse builds the auth response; ExpiresIn is in seconds from now.
func NewAuthResponse(u *domain.User, pair domain.TokenPair) AuthResponse {
	return AuthResponse{
		TokenType:        "Bearer",
		AccessToken:      pair.AccessToken,
		ExpiresAt:        pair.AccessExpiresAt,
		ExpiresIn:        int64(time.Until(pair.AccessExpiresAt).Round(time.Second).Seconds()),
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.RefreshExpiresAt,
		User:             NewUserResponse(u),
	}
}
