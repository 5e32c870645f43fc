package config

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSecret() string {
	return base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", MinSecretBytes)))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", validSecret())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, 24*time.Hour, cfg.Auth.RefreshTokenTTL())
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 2*time.Second, cfg.Auth.IdentityLookupTimeout())
	assert.Equal(t, "X-Trace-Id", cfg.HTTP.TraceHeader)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.HTTP.CORSAllowedOrigins)
	assert.Len(t, cfg.Auth.JWTSecret, MinSecretBytes)
}

func TestLoadRejectsBadSecrets(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   string
	}{
		{name: "missing", secret: "", want: "not configured"},
		{name: "not base64", secret: "%%%not-base64%%%", want: "base64"},
		{name: "too short", secret: base64.StdEncoding.EncodeToString([]byte("short-key")), want: "at least 32 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AUTH_JWT_SECRET", tt.secret)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadParsesLists(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", validSecret())
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://app.example.com , ,https://admin.example.com")
	t.Setenv("SENSITIVE_FIELDS", "pin,otp")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.HTTP.CORSAllowedOrigins)
	assert.Equal(t, []string{"pin", "otp"}, cfg.Auth.SensitiveFields)
}

func TestValidateRejectsWildcardOrigin(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", validSecret())
	t.Setenv("CORS_ALLOWED_ORIGINS", "*")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wildcard")
}

func TestValidateRejectsBcryptCost(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", validSecret())
	t.Setenv("AUTH_BCRYPT_COST", "2")

	_, err := Load()
	require.Error(t, err)
}
