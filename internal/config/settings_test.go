package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = strings.Repeat("s", 64)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("API_BASE_URL", "https://api.soup.example/")
	t.Setenv("SESSION_SECRET", testSecret)
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://api.soup.example", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 150*time.Millisecond, cfg.Auth.RenderBudget)
	assert.Equal(t, "/login", cfg.Auth.LoginPath)
	assert.Equal(t, "sm:0,md:768,lg:1024", cfg.Layout.Breakpoints.String())
	assert.Equal(t, 1198, cfg.Layout.MaxPageWidth)
	assert.Equal(t, 1198, cfg.Layout.DefaultWidth)
	assert.Equal(t, "soup", cfg.Metrics.Namespace)
	assert.Empty(t, cfg.Live.AllowedOrigins)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV", "production")
	t.Setenv("LAYOUT_BREAKPOINTS", "sm:0,lg:1200")
	t.Setenv("LAYOUT_DEFAULT_WIDTH", "1140")
	t.Setenv("AUTH_RENDER_BUDGET", "300ms")
	t.Setenv("API_TIMEOUT", "3")
	t.Setenv("LIVE_ALLOWED_ORIGINS", "https://soup.example, https://www.soup.example")

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "lg", string(cfg.Layout.Breakpoints.Resolve(1300)))
	assert.Equal(t, 1140, cfg.Layout.DefaultWidth)
	assert.Equal(t, 300*time.Millisecond, cfg.Auth.RenderBudget)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, []string{"https://soup.example", "https://www.soup.example"}, cfg.Live.AllowedOrigins)
}

func TestLoadConfig_RequiredValues(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("SESSION_SECRET", testSecret)
	_, err := LoadConfig(nil)
	assert.ErrorContains(t, err, "API_BASE_URL")

	t.Setenv("API_BASE_URL", "not a url")
	_, err = LoadConfig(nil)
	assert.ErrorContains(t, err, "absolute URL")

	t.Setenv("API_BASE_URL", "http://localhost:4000")
	t.Setenv("SESSION_SECRET", "short")
	_, err = LoadConfig(nil)
	assert.ErrorContains(t, err, "SESSION_SECRET")
}

func TestLoadConfig_BadBreakpoints(t *testing.T) {
	setRequired(t)
	t.Setenv("LAYOUT_BREAKPOINTS", "sm:0,md:0")

	_, err := LoadConfig(nil)
	assert.ErrorContains(t, err, "LAYOUT_BREAKPOINTS")
}

func TestValidate_DefaultWidthAboveMax(t *testing.T) {
	setRequired(t)
	t.Setenv("LAYOUT_DEFAULT_WIDTH", "2000")

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestSessionKeys(t *testing.T) {
	s := SessionConfig{Secret: strings.Repeat("a", 32) + strings.Repeat("b", 32)}
	assert.Equal(t, []byte(strings.Repeat("a", 32)), s.HashKey())
	assert.Equal(t, []byte(strings.Repeat("b", 32)), s.BlockKey())
}

func TestGetServerAddress(t *testing.T) {
	c := &Config{Server: ServerConfig{Protocol: "https", Domain: "soup.example", Port: "443"}}
	assert.Equal(t, "https://soup.example", c.GetServerAddress())
	c.Server = ServerConfig{Protocol: "http", Domain: "localhost", Port: "8080"}
	assert.Equal(t, "http://localhost:8080", c.GetServerAddress())
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("X_DUR", "garbage")
	assert.Equal(t, time.Second, getEnvAsDuration("X_DUR", time.Second))
	t.Setenv("X_DUR", "2m")
	assert.Equal(t, 2*time.Minute, getEnvAsDuration("X_DUR", time.Second))
}
