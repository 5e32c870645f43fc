package auth

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/faya/preorder-api/internal/domain"
	"github.com/faya/preorder-api/internal/observability"
)

func TestDefaultPolicyTable(t *testing.T) {
	policy, err := LoadPolicy("")
	require.NoError(t, err)

	cases := []struct {
		method string
		path   string
		want   Access
	}{
		{fiber.MethodOptions, "/api/v1/orders", AccessPermit},
		{fiber.MethodPost, "/api/v1/auth/login", AccessPermit},
		{fiber.MethodPost, "/api/v1/auth/register", AccessPermit},
		{fiber.MethodPost, "/api/v1/auth/refresh", AccessPermit},
		{fiber.MethodGet, "/api/v1/auth/me", AccessAuthenticated},
		{fiber.MethodGet, "/api/v1/menu", AccessPermit},
		{fiber.MethodGet, "/api/v1/menu/", AccessPermit},
		{fiber.MethodGet, "/api/v1/menu/3f2b8c1e-8a0c-4d59-9a0e-0c7c2a6d51f1", AccessPermit},
		{fiber.MethodPost, "/api/v1/menu", AccessAuthenticated},
		{fiber.MethodGet, "/api/v1/menuitems", AccessAuthenticated},
		{fiber.MethodGet, "/actuator/health", AccessPermit},
		{fiber.MethodGet, "/actuator/health/readiness", AccessPermit},
		{fiber.MethodGet, "/actuator/info", AccessPermit},
		{fiber.MethodGet, "/actuator/prometheus", AccessAuthenticated},
		{fiber.MethodGet, "/api/v1/health", AccessPermit},
		{fiber.MethodGet, "/api/v1/orders", AccessAuthenticated},
		{fiber.MethodGet, "/api/v1//menu", AccessPermit},
		{fiber.MethodGet, "/api/v1/menu/../orders", AccessAuthenticated},
		{fiber.MethodGet, "/api/v1/orders/../menu", AccessAuthenticated},
		{fiber.MethodGet, "/unknown", AccessAuthenticated},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, policy.Match(tc.method, tc.path).Access)
		})
	}
}

func TestPolicyFirstMatchWins(t *testing.T) {
	policy, err := NewPolicy(
		Rule{Name: "admin", Patterns: []string{"/api/v1/menu/admin/**"}, Access: AccessAuthenticated},
		Rule{Name: "menu", Patterns: []string{"/api/v1/menu/**"}, Access: AccessPermit},
	)
	require.NoError(t, err)

	assert.Equal(t, "admin", policy.Match("GET", "/api/v1/menu/admin/items").Name)
	assert.Equal(t, "menu", policy.Match("GET", "/api/v1/menu/items").Name)
	assert.Equal(t, "default", policy.Match("GET", "/elsewhere").Name)
}

func TestParsePolicyRejectsInvalidRules(t *testing.T) {
	cases := map[string]string{
		"unknown access": "rules:\n  - patterns: [/x]\n    access: maybe\n",
		"no patterns":    "rules:\n  - access: permit\n",
		"relative":       "rules:\n  - patterns: [api/x]\n    access: permit\n",
		"bad glob":       "rules:\n  - patterns: [\"/api/[\"]\n    access: permit\n",
		"not yaml":       "rules: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePolicy([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadPolicyFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(file, []byte("rules:\n  - name: all\n    methods: [get]\n    patterns: [\"/**\"]\n    access: permit\n"), 0o600))

	policy, err := LoadPolicy(file)
	require.NoError(t, err)
	assert.Equal(t, AccessPermit, policy.Match("GET", "/api/v1/orders").Access)
	assert.Equal(t, AccessAuthenticated, policy.Match("POST", "/api/v1/orders").Access)

	_, err = LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRepositoryPolicyFileMatchesEmbeddedDefault(t *testing.T) {
	onDisk, err := os.ReadFile(filepath.Join("..", "..", "config", "access-policy.yaml"))
	require.NoError(t, err)
	assert.Equal(t, string(defaultPolicy), string(onDisk))
}

func TestPolicyHandler(t *testing.T) {
	policy, err := LoadPolicy("")
	require.NoError(t, err)
	entry := NewEntryPoint(zap.NewNop(), nil)

	app := fiber.New()
	app.Use(observability.TraceMiddleware(""))
	app.Use(func(c *fiber.Ctx) error {
		if c.Get("X-Test-User") != "" {
			SetPrincipal(c, &Principal{ID: c.Get("X-Test-User"), Roles: []domain.Role{domain.RoleStudent}})
		}
		return c.Next()
	})
	app.Use(policy.Handler(entry))
	app.Get("/api/v1/menu", func(c *fiber.Ctx) error { return c.SendString("menu") })
	app.Get("/api/v1/orders", func(c *fiber.Ctx) error { return c.SendString("orders") })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/menu", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/orders", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("X-Test-User", "student-1")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "orders", string(body))
}
