package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/faya/preorder-api/internal/domain"
	"github.com/faya/preorder-api/internal/observability"
)

const bearerPrefix = "Bearer "

// reasonWrongKind is logged when a refresh token is presented as a bearer credential.
const reasonWrongKind = "wrong_kind"

// DefaultLookupTimeout bounds identity resolution when none is configured.
const DefaultLookupTimeout = 2 * time.Second

// Middleware attaches a principal to requests carrying a valid access token. It never
// rejects a request; the access policy decides what an anonymous caller may reach.
type Middleware struct {
	codec         *Codec
	identities    IdentityStore
	logger        *zap.Logger
	metrics       *observability.Metrics
	lookupTimeout time.Duration
}

// NewMiddleware constructs the authentication middleware.
func NewMiddleware(codec *Codec, identities IdentityStore, logger *zap.Logger, metrics *observability.Metrics, lookupTimeout time.Duration) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lookupTimeout <= 0 {
		lookupTimeout = DefaultLookupTimeout
	}
	return &Middleware{
		codec:         codec,
		identities:    identities,
		logger:        logger,
		metrics:       metrics,
		lookupTimeout: lookupTimeout,
	}
}

// Handle authenticates the caller when possible and always continues the chain.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return c.Next()
	}

	log := observability.LoggerFor(m.logger, c)

	claims, err := m.codec.Verify(raw)
	if err != nil {
		reason := string(ReasonMalformed)
		var tokenErr *TokenError
		if errors.As(err, &tokenErr) {
			reason = string(tokenErr.Reason)
		}
		m.reject(log, c, reason)
		return c.Next()
	}
	if claims.Kind != domain.TokenKindAccess {
		m.reject(log, c, reasonWrongKind)
		return c.Next()
	}

	principal, err := m.resolve(c.UserContext(), claims.Subject)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			m.reject(log, c, "unknown_subject")
		} else {
			log.Error("identity lookup failed", zap.String("path", c.Path()), zap.Error(err))
			m.metrics.RecordTokenRejection("lookup_failed")
		}
		return c.Next()
	}

	SetPrincipal(c, principal)
	defer c.Locals(principalKey, nil)
	return c.Next()
}

func (m *Middleware) resolve(parent context.Context, subject string) (*Principal, error) {
	ctx, cancel := context.WithTimeout(parent, m.lookupTimeout)
	defer cancel()
	return m.identities.Resolve(ctx, subject)
}

func (m *Middleware) reject(log *zap.Logger, c *fiber.Ctx, reason string) {
	log.Warn("bearer token ignored",
		zap.String("reason", reason),
		zap.String("path", c.Path()))
	m.metrics.RecordTokenRejection(reason)
}

// bearerToken extracts the credential from an Authorization header. The prefix is
// case sensitive and an empty credential counts as absent.
func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}
