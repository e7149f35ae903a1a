package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ShutdownConfig holds configuration for graceful shutdown
type ShutdownConfig struct {
	// Logger for structured logging
	Logger *slog.Logger

	// Timeout for graceful shutdown
	Timeout time.Duration

	// Signals to listen for (default: SIGINT, SIGTERM, SIGQUIT)
	Signals []os.Signal

	// OnShutdownStart is called when shutdown begins
	OnShutdownStart func()

	// OnShutdownComplete is called when shutdown completes
	OnShutdownComplete func()
}

// DefaultShutdownConfig returns a default shutdown configuration
func DefaultShutdownConfig() *ShutdownConfig {
	return &ShutdownConfig{
		Timeout: 30 * time.Second,
		Signals: []os.Signal{
			syscall.SIGINT,  // Ctrl+C
			syscall.SIGTERM, // Kubernetes/Docker stop
			syscall.SIGQUIT, // Ctrl+\
		},
	}
}

// Resource represents a resource that needs cleanup during shutdown
type Resource interface {
	Name() string
	Close(ctx context.Context) error
}

// ShutdownManager manages graceful shutdown of the application
type ShutdownManager struct {
	config    *ShutdownConfig
	logger    *slog.Logger
	resources []Resource
	mu        sync.RWMutex
}

// NewShutdownManager creates a new shutdown manager
func NewShutdownManager(config *ShutdownConfig) *ShutdownManager {
	if config == nil {
		config = DefaultShutdownConfig()
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ShutdownManager{
		config:    config,
		logger:    logger,
		resources: make([]Resource, 0),
	}
}

// Register adds a resource to be cleaned up during shutdown
func (sm *ShutdownManager) Register(resource Resource) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.resources = append(sm.resources, resource)
	sm.logger.Debug("resource registered for shutdown", "resource", resource.Name())
}

// Wait blocks until a shutdown signal is received or serveErr yields, then
// performs graceful shutdown. A serve error is returned alongside any
// shutdown error.
func (sm *ShutdownManager) Wait(serveErr <-chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, sm.config.Signals...)
	defer signal.Stop(sigChan)

	var cause error
	select {
	case sig := <-sigChan:
		sm.logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serveErr:
		sm.logger.Error("server failed", "error", err)
		cause = err
	}

	if sm.config.OnShutdownStart != nil {
		sm.config.OnShutdownStart()
	}

	ctx, cancel := context.WithTimeout(context.Background(), sm.config.Timeout)
	defer cancel()

	err := sm.Shutdown(ctx)

	if sm.config.OnShutdownComplete != nil {
		sm.config.OnShutdownComplete()
	}

	return errors.Join(cause, err)
}

// Shutdown closes registered resources one at a time, last registered
// first, so the HTTP server stops taking requests before the things its
// handlers use go away. Every resource gets a chance to close even when
// an earlier one fails.
func (sm *ShutdownManager) Shutdown(ctx context.Context) error {
	sm.mu.RLock()
	resources := make([]Resource, len(sm.resources))
	copy(resources, sm.resources)
	sm.mu.RUnlock()

	sm.logger.Info("initiating graceful shutdown",
		"timeout", sm.config.Timeout.String(),
		"resources", len(resources),
	)

	var errs []error
	for i := len(resources) - 1; i >= 0; i-- {
		r := resources[i]
		sm.logger.Info("closing resource", "resource", r.Name())
		start := time.Now()

		if err := r.Close(ctx); err != nil {
			sm.logger.Error("failed to close resource",
				"resource", r.Name(),
				"error", err,
				"duration", time.Since(start).String(),
			)
			errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
			continue
		}
		sm.logger.Info("resource closed successfully",
			"resource", r.Name(),
			"duration", time.Since(start).String(),
		)
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	sm.logger.Info("all resources closed successfully")
	return nil
}

// HTTPServerResource wraps an HTTP server for graceful shutdown
type HTTPServerResource struct {
	server *http.Server
	name   string
}

// NewHTTPServerResource creates a new HTTP server resource
func NewHTTPServerResource(name string, server *http.Server) *HTTPServerResource {
	return &HTTPServerResource{
		server: server,
		name:   name,
	}
}

func (h *HTTPServerResource) Name() string {
	return h.name
}

func (h *HTTPServerResource) Close(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// CustomResource wraps a custom cleanup function
type CustomResource struct {
	name      string
	closeFunc func(ctx context.Context) error
}

// NewCustomResource creates a new custom resource
func NewCustomResource(name string, closeFunc func(ctx context.Context) error) *CustomResource {
	return &CustomResource{
		name:      name,
		closeFunc: closeFunc,
	}
}

func (c *CustomResource) Name() string {
	return c.name
}

func (c *CustomResource) Close(ctx context.Context) error {
	return c.closeFunc(ctx)
}
