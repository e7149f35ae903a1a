package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"soup_web/internal/api"
	"soup_web/internal/auth"
	"soup_web/internal/cache"
	"soup_web/internal/config"
	"soup_web/internal/handlers"
	"soup_web/internal/layout"
	"soup_web/internal/live"
	"soup_web/internal/middlewares"
	"soup_web/internal/observability"
	"soup_web/internal/router"
	"soup_web/internal/server"
	"soup_web/internal/theme"
	"soup_web/internal/views"
	"soup_web/web"
)

const livePath = "/live"

func main() {
	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.LoadConfig(logger)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Auth snapshots are cached in redis when configured, memory otherwise
	cacheConfig := cache.DefaultFallbackConfig()
	cacheConfig.Logger = logger
	if cfg.Redis.Addr != "" {
		redisConfig := cache.DefaultRedisConfig()
		redisConfig.Addr = cfg.Redis.Addr
		redisConfig.Password = cfg.Redis.Password
		redisConfig.DB = cfg.Redis.DB
		cacheConfig.Redis = redisConfig
	}
	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	snapshots := cache.NewFallbackCache(startCtx, cacheConfig)
	cancel()

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, api.WithLogger(logger))

	metricsConfig := observability.DefaultMetricsConfig(cfg.Metrics.Namespace)
	metricsConfig.Logger = logger
	metrics := observability.NewMetrics(metricsConfig)

	themes := theme.NewStore(cfg.Session.HashKey(), cfg.Session.BlockKey(), cfg.SecureCookies())

	provider := auth.NewProvider(client, snapshots, auth.Config{
		TTL:           cfg.Auth.CacheTTL,
		RenderBudget:  cfg.Auth.RenderBudget,
		Logger:        logger,
		Observer:      metrics.AuthOutcome,
		IgnoreCookies: []string{handlers.ViewportCookie, themes.CookieName()},
	})

	themeHook := func(from, to theme.Mode) func() {
		logger.Debug("theme transition", "from", from, "to", to)
		return nil
	}

	bps := cfg.Layout.Breakpoints
	gridConfig := layout.DefaultGridConfig(bps)
	gridConfig.MaxPageWidth = cfg.Layout.MaxPageWidth
	gridConfig.DefaultWidth = cfg.Layout.DefaultWidth
	shell := views.NewShell(views.ShellConfig{
		Breakpoints: bps,
		Grid:        layout.NewGrid(bps, gridConfig),
		LoginPath:   cfg.Auth.LoginPath,
		LivePath:    livePath,
		Logger:      logger,
	})

	liveConfig := live.DefaultConfig()
	liveConfig.AllowedOrigins = cfg.Live.AllowedOrigins
	liveConfig.WriteTimeout = cfg.Live.WriteTimeout
	liveConfig.PingInterval = cfg.Live.PingInterval
	liveConfig.Logger = logger
	hub, err := live.NewHub(liveConfig, live.Deps{
		Shell:     shell,
		Auth:      provider,
		Themes:    themes,
		ThemeHook: themeHook,
		Metrics:   metrics,
	})
	if err != nil {
		log.Fatalf("Failed to create live hub: %v", err)
	}

	h := handlers.NewHandler(shell, themes, client, client.BaseURL(), logger)
	h.ThemeHook = themeHook

	health := observability.DefaultHealthConfig()
	health.Register("cache", observability.PingCheck("cache", snapshots.Ping), false)
	health.Register("api", observability.PingCheck("api", client.Ping), true)

	mode := "prod"
	recovery := middlewares.DefaultRecoveryConfig()
	if cfg.IsDevelopment() {
		mode = "dev"
		recovery = middlewares.DevelopmentRecoveryConfig()
	}
	recovery.Logger = logger
	requestLog := middlewares.DefaultLoggerConfig()
	requestLog.Logger = logger

	r := router.NewRouter(&router.RouterConfig{
		Mode: mode,
		Static: &router.StaticConfig{
			URLPrefix: "/static",
			Dir:       cfg.Rendering.StaticDir,
			FS:        web.Static(),
			MaxAge:    time.Hour,
		},
	}, logger,
		middleware.RealIP,
		observability.RequestID(observability.DefaultRequestIDConfig()),
		metrics.Middleware,
		middlewares.Logger(requestLog),
		middlewares.Recovery(recovery),
		middlewares.Security(middlewares.DefaultSecurityConfig()),
	)

	draftLimit := middlewares.DefaultRateLimitConfig(snapshots)
	draftLimit.Logger = logger
	draftLimit.Capacity = 5
	draftLimit.RefillRate = 0.2
	liveLimit := middlewares.DefaultRateLimitConfig(snapshots)
	liveLimit.Logger = logger
	liveLimit.Capacity = 20

	router.SetupRoutes(r, router.Dependencies{
		Handler:    h,
		Auth:       provider,
		Live:       hub,
		Metrics:    metrics,
		Health:     health,
		DraftLimit: middlewares.RateLimit(draftLimit),
		LiveLimit:  middlewares.RateLimit(liveLimit),
		LoginPath:  cfg.Auth.LoginPath,
		LivePath:   livePath,
	})

	serverConfig := server.DefaultConfig(cfg.GetServerAddress())
	if cfg.IsProduction() {
		serverConfig = server.ProductionConfig(cfg.GetServerAddress())
	} else if cfg.IsDevelopment() {
		serverConfig = server.DevelopmentConfig(cfg.GetServerAddress())
	}
	serverConfig.Logger = logger
	if cfg.TLS.Enabled {
		serverConfig.TLSCertFile = cfg.TLS.CertFile
		serverConfig.TLSKeyFile = cfg.TLS.KeyFile
	}

	logger.Info("Starting server", "addr", serverConfig.Addr, "api", client.BaseURL())

	// Closed in reverse: http server, live sessions, cache
	resources := []server.Resource{
		server.NewCustomResource("cache", func(context.Context) error { return snapshots.Close() }),
		server.NewCustomResource("live-hub", hub.Close),
	}
	if err := server.Start(r, serverConfig, resources); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}
