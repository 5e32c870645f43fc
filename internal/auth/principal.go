package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/faya/preorder-api/internal/domain"
	"github.com/faya/preorder-api/internal/repository"
)

const principalKey = "auth_principal"

type principalContextKey struct{}

// ErrPrincipalNotFound is returned by an IdentityStore when the subject no longer maps
// to an account allowed to authenticate.
var ErrPrincipalNotFound = errors.New("principal not found")

// Principal represents the authenticated caller for one request.
type Principal struct {
	ID    string
	Email string
	Roles []domain.Role
}

// HasRole reports whether p holds any of roles.
func (p *Principal) HasRole(roles ...domain.Role) bool {
	if p == nil {
		return false
	}
	for _, held := range p.Roles {
		for _, want := range roles {
			if held == want {
				return true
			}
		}
	}
	return false
}

// IdentityStore resolves a token subject into a principal.
type IdentityStore interface {
	Resolve(ctx context.Context, subject string) (*Principal, error)
}

// UserIdentityStore resolves subjects against the users table.
type UserIdentityStore struct {
	users repository.UserRepository
}

// NewUserIdentityStore wraps a user repository.
func NewUserIdentityStore(users repository.UserRepository) *UserIdentityStore {
	return &UserIdentityStore{users: users}
}

// Resolve loads the user with id subject. Missing and suspended accounts both report
// ErrPrincipalNotFound.
func (s *UserIdentityStore) Resolve(ctx context.Context, subject string) (*Principal, error) {
	user, err := s.users.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("resolve principal: %w", err)
	}
	if !user.Active() {
		return nil, ErrPrincipalNotFound
	}
	return PrincipalFromUser(user), nil
}

// PrincipalFromUser projects a user onto the request principal.
func PrincipalFromUser(user *domain.User) *Principal {
	return &Principal{
		ID:    user.ID,
		Email: user.Email,
		Roles: []domain.Role{user.Role},
	}
}

// SetPrincipal attaches p to the request locals and its user context.
func SetPrincipal(c *fiber.Ctx, p *Principal) {
	c.Locals(principalKey, p)
	c.SetUserContext(context.WithValue(c.UserContext(), principalContextKey{}, p))
}

// PrincipalFromContext retrieves the authenticated caller, if any.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	principal, ok := c.Locals(principalKey).(*Principal)
	return principal, ok && principal != nil
}

// PrincipalFrom retrieves the caller from a request context.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	principal, ok := ctx.Value(principalContextKey{}).(*Principal)
	return principal, ok && principal != nil
}
