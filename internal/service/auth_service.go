package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/faya/preorder-api/internal/auth"
	"github.com/faya/preorder-api/internal/domain"
	"github.com/faya/preorder-api/internal/events"
	"github.com/faya/preorder-api/internal/repository"
	"github.com/faya/preorder-api/pkg/apperrors"
)

// RegisterInput carries a validated registration request.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// AuthService coordinates registration, login and token refresh.
type AuthService struct {
	users      repository.UserRepository
	codec      *auth.Codec
	hasher     *auth.PasswordHasher
	dispatcher events.Dispatcher
	logger     *zap.Logger
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// AuthDependencies encapsulates the collaborators of the auth service.
type AuthDependencies struct {
	Users      repository.UserRepository
	Codec      *auth.Codec
	Hasher     *auth.PasswordHasher
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.Users,
		codec:      deps.Codec,
		hasher:     deps.Hasher,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		accessTTL:  deps.AccessTTL,
		refreshTTL: deps.RefreshTTL,
	}
}

// Register creates a STUDENT account and signs it in. Duplicate emails are left to the
// unique constraint.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, domain.TokenPair, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, domain.TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		FullName:     strings.TrimSpace(in.FullName),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         domain.RoleStudent,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, domain.TokenPair{}, fmt.Errorf("register user: %w", err)
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.New(events.EventUserRegistered, user.ID,
			events.UserRegisteredPayload{UserID: user.ID, Role: user.Role}))
	}
	return user, pair, nil
}

// Login checks credentials. Unknown emails, wrong passwords and suspended accounts
// all fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.CompareDummy(password)
			return nil, domain.TokenPair{}, apperrors.NewAuthRequired("invalid credentials")
		}
		return nil, domain.TokenPair{}, fmt.Errorf("load user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, domain.TokenPair{}, apperrors.NewAuthRequired("invalid credentials")
		}
		return nil, domain.TokenPair{}, fmt.Errorf("compare password: %w", err)
	}
	if !user.Active() {
		return nil, domain.TokenPair{}, apperrors.NewAuthRequired("account suspended")
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token stays valid
// until it expires.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.User, domain.TokenPair, error) {
	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		var tokenErr *auth.TokenError
		if errors.As(err, &tokenErr) {
			s.logger.Warn("refresh token rejected", zap.String("reason", string(tokenErr.Reason)))
		}
		return nil, domain.TokenPair{}, apperrors.NewAuthRequired("invalid refresh token")
	}
	if claims.Kind != domain.TokenKindRefresh {
		return nil, domain.TokenPair{}, apperrors.NewAuthRequired("not a refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.TokenPair{}, apperrors.NewAuthRequired("unknown subject")
		}
		return nil, domain.TokenPair{}, fmt.Errorf("load user: %w", err)
	}
	if !user.Active() {
		return nil, domain.TokenPair{}, apperrors.NewAuthRequired("account suspended")
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	return user, pair, nil
}

// Me returns the account behind principal.
func (s *AuthService) Me(ctx context.Context, principal *auth.Principal) (*domain.User, error) {
	if principal == nil {
		return nil, apperrors.NewAuthRequired("principal required")
	}
	user, err := s.users.GetByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("User", "id", principal.ID)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issuePair(userID string) (domain.TokenPair, error) {
	access, err := s.codec.Issue(userID, domain.TokenKindAccess, s.accessTTL)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.codec.Issue(userID, domain.TokenKindRefresh, s.refreshTTL)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return domain.TokenPair{
		AccessToken:      access.Value,
		AccessExpiresAt:  access.ExpiresAt,
		RefreshToken:     refresh.Value,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
