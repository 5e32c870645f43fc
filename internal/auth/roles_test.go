package auth

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faya/preorder-api/internal/domain"
	"github.com/faya/preorder-api/pkg/apperrors"
)

func TestRequireRole(t *testing.T) {
	var got error
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		got = err
		return c.SendStatus(fiber.StatusTeapot)
	}})
	app.Use(func(c *fiber.Ctx) error {
		if role := c.Get("X-Role"); role != "" {
			SetPrincipal(c, &Principal{ID: "u-1", Roles: []domain.Role{domain.Role(role)}})
		}
		return c.Next()
	})
	app.Get("/vendor", RequireRole(domain.RoleVendor, domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	call := func(role string) (int, error) {
		got = nil
		req := httptest.NewRequest(fiber.MethodGet, "/vendor", nil)
		if role != "" {
			req.Header.Set("X-Role", role)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode, got
	}

	status, err := call("VENDOR")
	assert.Equal(t, fiber.StatusOK, status)
	assert.NoError(t, err)

	status, err = call("ADMIN")
	assert.Equal(t, fiber.StatusOK, status)
	assert.NoError(t, err)

	_, err = call("STUDENT")
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	_, err = call("")
	assert.True(t, apperrors.Is(err, apperrors.KindAuthRequired))
}

func TestPrincipalHasRole(t *testing.T) {
	p := &Principal{Roles: []domain.Role{domain.RoleStudent}}
	assert.True(t, p.HasRole(domain.RoleStudent))
	assert.True(t, p.HasRole(domain.RoleAdmin, domain.RoleStudent))
	assert.False(t, p.HasRole(domain.RoleVendor))

	var nilPrincipal *Principal
	assert.False(t, nilPrincipal.HasRole(domain.RoleStudent))
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(4)

	hash, err := h.Hash("correct horse battery")
	require.NoError(t, err)
	assert.NotContains(t, hash, "correct horse")

	assert.NoError(t, h.Compare(hash, "correct horse battery"))
	assert.True(t, errors.Is(h.Compare(hash, "wrong"), ErrPasswordMismatch))
	assert.Error(t, h.Compare("not-a-hash", "x"))
	h.CompareDummy("anything")
}
