package domain

import "time"

// TokenKind differentiates short-lived access tokens from refresh tokens.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Valid reports whether k is a known token kind.
func (k TokenKind) Valid() bool {
	return k == TokenKindAccess || k == TokenKindRefresh
}

// TokenPair is what the auth endpoints hand back after login, registration or refresh.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
