package server

import (
	"log/slog"
	"net/http"
	"time"
)

// Config holds HTTP server configuration
type Config struct {
	// Server address (host:port)
	Addr string

	// Logger for structured logging
	Logger *slog.Logger

	// ReadHeaderTimeout bounds reading the request headers
	ReadHeaderTimeout time.Duration

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Live sockets set their own deadlines once upgraded.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration

	// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
	MaxHeaderBytes int

	// TLS configuration
	TLSCertFile string
	TLSKeyFile  string

	// ShutdownTimeout is the maximum duration for graceful shutdown
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a default server configuration
func DefaultConfig(addr string) *Config {
	return &Config{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
		ShutdownTimeout:   30 * time.Second,
	}
}

// ProductionConfig returns a production-optimized server configuration
func ProductionConfig(addr string) *Config {
	cfg := DefaultConfig(addr)
	cfg.ReadTimeout = 10 * time.Second
	cfg.IdleTimeout = 120 * time.Second
	return cfg
}

// DevelopmentConfig returns a development-friendly server configuration
func DevelopmentConfig(addr string) *Config {
	cfg := DefaultConfig(addr)
	cfg.ReadTimeout = 30 * time.Second
	cfg.WriteTimeout = 30 * time.Second
	cfg.IdleTimeout = 300 * time.Second
	cfg.ShutdownTimeout = 10 * time.Second
	return cfg
}

// New creates a new HTTP server with the given configuration
func New(handler http.Handler, config *Config) *http.Server {
	if config == nil {
		config = DefaultConfig(":8080")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	server := &http.Server{
		Addr:              config.Addr,
		Handler:           handler,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		ReadTimeout:       config.ReadTimeout,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
		MaxHeaderBytes:    config.MaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	logger.Info("http server configured",
		"addr", config.Addr,
		"read_timeout", config.ReadTimeout.String(),
		"write_timeout", config.WriteTimeout.String(),
		"idle_timeout", config.IdleTimeout.String(),
	)

	return server
}

// Start serves handler until a shutdown signal arrives, then closes the
// server and resources. Resources close after the server, last registered
// first.
func Start(handler http.Handler, config *Config, resources []Resource) error {
	if config == nil {
		config = DefaultConfig(":8080")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv := New(handler, config)

	shutdownConfig := DefaultShutdownConfig()
	shutdownConfig.Logger = logger
	shutdownConfig.Timeout = config.ShutdownTimeout
	shutdownConfig.OnShutdownStart = func() {
		logger.Info("shutdown initiated, stopping server gracefully")
	}
	shutdownConfig.OnShutdownComplete = func() {
		logger.Info("shutdown complete")
	}

	sm := NewShutdownManager(shutdownConfig)
	for _, resource := range resources {
		sm.Register(resource)
	}
	sm.Register(NewHTTPServerResource("http-server", srv))

	serveErr := make(chan error, 1)
	go func() {
		var err error
		if config.TLSCertFile != "" && config.TLSKeyFile != "" {
			logger.Info("starting https server", "addr", srv.Addr, "cert", config.TLSCertFile)
			err = srv.ListenAndServeTLS(config.TLSCertFile, config.TLSKeyFile)
		} else {
			logger.Info("starting http server", "addr", srv.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	return sm.Wait(serveErr)
}
