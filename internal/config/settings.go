package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"soup_web/internal/layout"
)

const minSessionSecretLen = 64

// Config represents the complete application configuration
type Config struct {
	App       AppConfig
	Server    ServerConfig
	TLS       TLSConfig
	API       APIConfig
	Auth      AuthConfig
	Session   SessionConfig
	Layout    LayoutConfig
	Redis     RedisConfig
	Live      LiveConfig
	Metrics   MetricsConfig
	Rendering RenderingConfig
}

// AppConfig holds application-level settings
type AppConfig struct {
	Version     string
	Environment string // development, staging, production
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port     string
	Protocol string // http or https
	Domain   string
}

// TLSConfig holds TLS/HTTPS certificate settings
type TLSConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

// APIConfig points at the external SouP API.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// AuthConfig holds auth snapshot settings
type AuthConfig struct {
	CacheTTL     time.Duration
	RenderBudget time.Duration
	LoginPath    string
}

// SessionConfig holds the signing secret for cookies we own (theme).
type SessionConfig struct {
	Secret string
}

// HashKey is the first half of the secret, used for HMAC.
func (s SessionConfig) HashKey() []byte {
	return []byte(s.Secret[:32])
}

// BlockKey is the second 32 bytes of the secret, used for AES-256.
func (s SessionConfig) BlockKey() []byte {
	return []byte(s.Secret[32:64])
}

// LayoutConfig holds breakpoint and page grid settings
type LayoutConfig struct {
	Breakpoints  *layout.Breakpoints
	MaxPageWidth int
	DefaultWidth int
}

// RedisConfig is optional; an empty Addr runs on the memory cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LiveConfig holds websocket session settings
type LiveConfig struct {
	AllowedOrigins []string
	WriteTimeout   time.Duration
	PingInterval   time.Duration
}

// MetricsConfig holds prometheus settings
type MetricsConfig struct {
	Namespace string
}

// RenderingConfig holds static file settings
type RenderingConfig struct {
	// StaticDir overrides the embedded assets when set.
	StaticDir string
}

// LoadConfig loads configuration from environment variables
func LoadConfig(logger *slog.Logger) (*Config, error) {
	// Load .env file (ignore error if it doesn't exist)
	godotenv.Load()

	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("loading application configuration")

	config := &Config{}

	loadAppConfig(&config.App, logger)
	loadServerConfig(&config.Server, logger)
	loadTLSConfig(&config.TLS, logger)

	if err := loadAPIConfig(&config.API, logger); err != nil {
		return nil, fmt.Errorf("failed to load api config: %w", err)
	}

	loadAuthConfig(&config.Auth, logger)

	if err := loadSessionConfig(&config.Session, logger); err != nil {
		return nil, fmt.Errorf("failed to load session config: %w", err)
	}

	if err := loadLayoutConfig(&config.Layout, logger); err != nil {
		return nil, fmt.Errorf("failed to load layout config: %w", err)
	}

	loadRedisConfig(&config.Redis, logger)
	loadLiveConfig(&config.Live, logger)
	loadMetricsConfig(&config.Metrics, logger)
	loadRenderingConfig(&config.Rendering, logger)

	logger.Info("configuration loaded successfully",
		"environment", config.App.Environment,
		"version", config.App.Version,
		"port", config.Server.Port,
	)

	return config, nil
}

func loadAppConfig(cfg *AppConfig, logger *slog.Logger) {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "1.0.0"
		logger.Warn("VERSION not set, using default", "default", version)
	}
	cfg.Version = version

	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
		logger.Warn("ENV not set, using default", "default", env)
	}
	cfg.Environment = env
}

func loadServerConfig(cfg *ServerConfig, logger *slog.Logger) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		logger.Warn("PORT not set, using default", "default", port)
	}
	cfg.Port = port

	protocol := os.Getenv("PROTOCOL")
	if protocol == "" {
		protocol = "http"
	}
	cfg.Protocol = protocol

	domain := os.Getenv("DOMAIN")
	if domain == "" {
		domain = "localhost"
	}
	cfg.Domain = domain
}

func loadTLSConfig(cfg *TLSConfig, logger *slog.Logger) {
	certFile := os.Getenv("TLS_CERT_FILE")
	keyFile := os.Getenv("TLS_KEY_FILE")

	cfg.CertFile = certFile
	cfg.KeyFile = keyFile
	cfg.Enabled = certFile != "" && keyFile != ""

	if cfg.Enabled {
		logger.Info("TLS enabled", "cert_file", certFile, "key_file", keyFile)
	}
}

func loadAPIConfig(cfg *APIConfig, logger *slog.Logger) error {
	base := os.Getenv("API_BASE_URL")
	if base == "" {
		return fmt.Errorf("API_BASE_URL environment variable is required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL %q is not an absolute URL", base)
	}
	cfg.BaseURL = strings.TrimRight(base, "/")
	cfg.Timeout = getEnvAsDuration("API_TIMEOUT", 5*time.Second)

	logger.Debug("api config loaded", "base_url", cfg.BaseURL, "timeout", cfg.Timeout)
	return nil
}

func loadAuthConfig(cfg *AuthConfig, logger *slog.Logger) {
	cfg.CacheTTL = getEnvAsDuration("AUTH_CACHE_TTL", time.Minute)
	cfg.RenderBudget = getEnvAsDuration("AUTH_RENDER_BUDGET", 150*time.Millisecond)

	cfg.LoginPath = os.Getenv("LOGIN_PATH")
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}

	logger.Debug("auth config loaded", "cache_ttl", cfg.CacheTTL, "render_budget", cfg.RenderBudget)
}

func loadSessionConfig(cfg *SessionConfig, logger *slog.Logger) error {
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		return fmt.Errorf("SESSION_SECRET environment variable is required")
	}
	if len(secret) < minSessionSecretLen {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters", minSessionSecretLen)
	}
	cfg.Secret = secret
	return nil
}

func loadLayoutConfig(cfg *LayoutConfig, logger *slog.Logger) error {
	raw := os.Getenv("LAYOUT_BREAKPOINTS")
	if raw == "" {
		cfg.Breakpoints = layout.DefaultBreakpoints()
	} else {
		bps, err := layout.ParseBreakpoints(raw)
		if err != nil {
			return fmt.Errorf("LAYOUT_BREAKPOINTS: %w", err)
		}
		cfg.Breakpoints = bps
	}

	cfg.MaxPageWidth = getEnvAsInt("LAYOUT_MAX_PAGE_WIDTH", layout.DefaultMaxPageWidth)
	if cfg.MaxPageWidth <= 0 {
		return fmt.Errorf("LAYOUT_MAX_PAGE_WIDTH must be positive, got %d", cfg.MaxPageWidth)
	}
	cfg.DefaultWidth = getEnvAsInt("LAYOUT_DEFAULT_WIDTH", cfg.MaxPageWidth)

	logger.Debug("layout config loaded",
		"breakpoints", cfg.Breakpoints.String(),
		"max_page_width", cfg.MaxPageWidth,
	)
	return nil
}

func loadRedisConfig(cfg *RedisConfig, logger *slog.Logger) {
	cfg.Addr = os.Getenv("REDIS_ADDR")
	cfg.Password = os.Getenv("REDIS_PASSWORD")
	cfg.DB = getEnvAsInt("REDIS_DB", 0)

	if cfg.Addr != "" {
		logger.Debug("Redis config loaded", "addr", cfg.Addr, "db", cfg.DB)
	}
}

func loadLiveConfig(cfg *LiveConfig, logger *slog.Logger) {
	cfg.AllowedOrigins = splitAndTrim(os.Getenv("LIVE_ALLOWED_ORIGINS"), ",")
	cfg.WriteTimeout = getEnvAsDuration("LIVE_WRITE_TIMEOUT", 10*time.Second)
	cfg.PingInterval = getEnvAsDuration("LIVE_PING_INTERVAL", 30*time.Second)

	if len(cfg.AllowedOrigins) == 0 {
		logger.Debug("LIVE_ALLOWED_ORIGINS not set, accepting same-origin only")
	}
}

func loadMetricsConfig(cfg *MetricsConfig, logger *slog.Logger) {
	cfg.Namespace = os.Getenv("METRICS_NAMESPACE")
	if cfg.Namespace == "" {
		cfg.Namespace = "soup"
	}
}

func loadRenderingConfig(cfg *RenderingConfig, logger *slog.Logger) {
	cfg.StaticDir = os.Getenv("STATIC_DIR")
	if cfg.StaticDir != "" {
		logger.Info("serving static files from disk", "dir", cfg.StaticDir)
	}
}

// Helper functions

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

// getEnvAsDuration accepts Go durations ("150ms") or bare seconds ("5").
func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}

func splitAndTrim(s, sep string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsStaging returns true if running in staging environment
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// SecureCookies reports whether cookies we set should carry Secure.
func (c *Config) SecureCookies() bool {
	return c.TLS.Enabled || c.Server.Protocol == "https" || getEnvAsBool("COOKIE_SECURE", false)
}

// GetServerAddress returns the full server address (protocol://domain:port)
func (c *Config) GetServerAddress() string {
	if c.Server.Protocol == "https" && c.Server.Port == "443" {
		return fmt.Sprintf("https://%s", c.Server.Domain)
	}
	if c.Server.Protocol == "http" && c.Server.Port == "80" {
		return fmt.Sprintf("http://%s", c.Server.Domain)
	}
	return fmt.Sprintf("%s://%s:%s", c.Server.Protocol, c.Server.Domain, c.Server.Port)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base URL is required")
	}
	if len(c.Session.Secret) < minSessionSecretLen {
		return fmt.Errorf("session secret must be at least %d characters", minSessionSecretLen)
	}
	if c.Layout.Breakpoints == nil {
		return fmt.Errorf("layout breakpoints are required")
	}
	if c.Layout.DefaultWidth > c.Layout.MaxPageWidth {
		return fmt.Errorf("layout default width %d exceeds max page width %d",
			c.Layout.DefaultWidth, c.Layout.MaxPageWidth)
	}
	if c.IsProduction() && c.Auth.RenderBudget > 2*time.Second {
		return fmt.Errorf("auth render budget %s is too long for production", c.Auth.RenderBudget)
	}
	return nil
}
