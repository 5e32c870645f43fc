package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/faya/preorder-api/internal/domain"
)

// MinKeyBytes is the minimum HMAC key size accepted by the codec (256 bits).
const MinKeyBytes = 32

// ErrWeakKey is returned by NewCodec when the key is absent or too short.
var ErrWeakKey = fmt.Errorf("signing key must be at least %d bytes", MinKeyBytes)

// TokenErrorReason names why a token was rejected.
type TokenErrorReason string

const (
	ReasonMalformed        TokenErrorReason = "malformed"
	ReasonExpired          TokenErrorReason = "expired"
	ReasonInvalidSignature TokenErrorReason = "invalid_signature"
	// ReasonRevoked is only produced by a check installed with WithRevocationCheck.
	ReasonRevoked TokenErrorReason = "revoked"
)

// TokenError is the only error Verify returns.
type TokenError struct {
	Reason TokenErrorReason
	cause  error
}

// Sentinels for errors.Is comparisons.
var (
	ErrTokenMalformed        = &TokenError{Reason: ReasonMalformed}
	ErrTokenExpired          = &TokenError{Reason: ReasonExpired}
	ErrTokenInvalidSignature = &TokenError{Reason: ReasonInvalidSignature}
	ErrTokenRevoked          = &TokenError{Reason: ReasonRevoked}
)

func (e *TokenError) Error() string {
	return "token rejected: " + string(e.Reason)
}

func (e *TokenError) Unwrap() error {
	return e.cause
}

// Is matches any TokenError with the same reason.
func (e *TokenError) Is(target error) bool {
	t, ok := target.(*TokenError)
	return ok && t.Reason == e.Reason
}

func tokenError(reason TokenErrorReason, cause error) error {
	return &TokenError{Reason: reason, cause: cause}
}

// Claims describes the JWT payload.
type Claims struct {
	Kind domain.TokenKind `json:"type"`
	jwt.RegisteredClaims
}

// Token is a signed token string with the times baked into it.
type Token struct {
	Value     string
	Kind      domain.TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec issues and verifies HS256 tokens. It is safe for concurrent use.
type Codec struct {
	key        []byte
	now        func() time.Time
	revocation func(*Claims) error
}

// CodecOption customises a Codec.
type CodecOption func(*Codec)

// WithClock overrides the time source.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRevocationCheck installs a hook consulted after a token passes signature and
// expiry checks. A non-nil return rejects the token as revoked. No store backs it yet.
func WithRevocationCheck(check func(*Claims) error) CodecOption {
	return func(c *Codec) {
		c.revocation = check
	}
}

// NewCodec builds a codec over key. The key is copied.
func NewCodec(key []byte, opts ...CodecOption) (*Codec, error) {
	if len(key) < MinKeyBytes {
		return nil, ErrWeakKey
	}
	c := &Codec{key: append([]byte(nil), key...), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue builds and signs a token for subject valid for ttl.
func (c *Codec) Issue(subject string, kind domain.TokenKind, ttl time.Duration) (Token, error) {
	if strings.TrimSpace(subject) == "" {
		return Token{}, errors.New("token subject is required")
	}
	if !kind.Valid() {
		return Token{}, fmt.Errorf("unknown token kind %q", kind)
	}
	if ttl <= 0 {
		return Token{}, errors.New("token ttl must be positive")
	}

	now := c.now()
	claims := &Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{
		Value:     signed,
		Kind:      kind,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify checks structure, expiry and signature, in that order, and returns the claims.
// Every failure is a *TokenError.
func (c *Codec) Verify(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, tokenError(ReasonMalformed, errors.New("empty token"))
	}

	// Expiry is judged before the signature so an expired token always reports Expired.
	unverified := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, unverified); err != nil {
		return nil, tokenError(ReasonMalformed, err)
	}
	if unverified.ExpiresAt == nil {
		return nil, tokenError(ReasonMalformed, errors.New("missing exp claim"))
	}
	if !c.now().Before(unverified.ExpiresAt.Time) {
		return nil, tokenError(ReasonExpired, nil)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, classifyJWTError(err)
	}
	if !parsed.Valid {
		return nil, tokenError(ReasonInvalidSignature, nil)
	}
	if claims.Subject == "" || !claims.Kind.Valid() {
		return nil, tokenError(ReasonMalformed, errors.New("missing subject or kind"))
	}

	if c.revocation != nil {
		if err := c.revocation(claims); err != nil {
			return nil, tokenError(ReasonRevoked, err)
		}
	}
	return claims, nil
}

func (c *Codec) keyFunc(_ *jwt.Token) (interface{}, error) {
	return c.key, nil
}

func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return tokenError(ReasonExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return tokenError(ReasonInvalidSignature, err)
	default:
		return tokenError(ReasonMalformed, err)
	}
}
