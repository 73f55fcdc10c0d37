package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STARLAB_APP_NAME", "STARLAB_API_BASE", "STARLAB_AUTO_LOGOUT",
		"STARLAB_SESSION_BACKEND", "STARLAB_SESSION_PATH", "STARLAB_PORT",
		"STARLAB_CORS_ORIGINS", "STARLAB_TOKEN_SECRET", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
	// keep stray .env files in the package dir out of the picture
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("json")
	require.NoError(t, err)

	assert.Equal(t, "starlab", cfg.App.Name)
	assert.Equal(t, "", cfg.Client.APIBase)
	assert.False(t, cfg.Client.AutoLogoutOnUnauthorized)
	assert.Equal(t, "file", cfg.Client.SessionBackend)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowOrigins)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "http://localhost:8080", cfg.Origin())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STARLAB_APP_NAME", "nebula")
	t.Setenv("STARLAB_API_BASE", "https://api.example.com/")
	t.Setenv("STARLAB_AUTO_LOGOUT", "true")
	t.Setenv("STARLAB_SESSION_BACKEND", "sqlite")
	t.Setenv("STARLAB_CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("LOG_FORMAT", "CONSOLE")

	cfg, err := Load("json")
	require.NoError(t, err)

	assert.Equal(t, "nebula", cfg.App.Name)
	assert.Equal(t, "https://api.example.com", cfg.Client.APIBase)
	assert.Equal(t, "https://api.example.com", cfg.Origin())
	assert.True(t, cfg.Client.AutoLogoutOnUnauthorized)
	assert.Equal(t, "sqlite", cfg.Client.SessionBackend)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowOrigins)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad api base", key: "STARLAB_API_BASE", value: "not a url"},
		{name: "bad backend", key: "STARLAB_SESSION_BACKEND", value: "s3"},
		{name: "bad port", key: "STARLAB_PORT", value: "eighty"},
		{name: "bad bool", key: "STARLAB_AUTO_LOGOUT", value: "maybe"},
		{name: "bad log level", key: "LOG_LEVEL", value: "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load("json")
			require.Error(t, err)
		})
	}
}
