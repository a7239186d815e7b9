// Copyright (c) 2025-2026 Lensfolio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/lensfolio/lensfolio/internal/analytics"
	"github.com/lensfolio/lensfolio/internal/apiclient"
	"github.com/lensfolio/lensfolio/internal/cache"
	"github.com/lensfolio/lensfolio/internal/config"
	"github.com/lensfolio/lensfolio/internal/geoip"
	"github.com/lensfolio/lensfolio/internal/handler"
	"github.com/lensfolio/lensfolio/internal/logging"
	"github.com/lensfolio/lensfolio/internal/middleware"
	"github.com/lensfolio/lensfolio/internal/render"
	"github.com/lensfolio/lensfolio/internal/scheduler"
	"github.com/lensfolio/lensfolio/internal/session"
	"github.com/lensfolio/lensfolio/internal/store"
	"github.com/lensfolio/lensfolio/internal/ui"
	"github.com/lensfolio/lensfolio/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Lensfolio - Photography Portfolio Frontend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LENSFOLIO_SESSION_SECRET   Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LENSFOLIO_API_BASE_URL     Portfolio API base URL (default: http://localhost:4000/api)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LENSFOLIO_DB_PATH          SQLite database path (default: ./data/lensfolio.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LENSFOLIO_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LENSFOLIO_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LENSFOLIO_REDIS_URL        Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LENSFOLIO_GEOIP_DB_PATH    GeoLite2 country database path (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("lensfolio %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(textHandler)
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize local database (sessions, analytics, event log)
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	// API client
	api := apiclient.New(apiclient.Config{
		BaseURL:         cfg.APIBaseURL,
		Timeout:         time.Duration(cfg.APITimeout) * time.Second,
		MaxReadAttempts: cfg.APIRetries,
	})
	slog.Info("api client initialized", "base_url", cfg.APIBaseURL)

	// Session manager backed by the local database
	sessionManager := session.NewSessionManager(db, cfg.IsDevelopment())
	sessions := session.NewManager(sessionManager, api, db)
	slog.Info("session manager initialized")

	// Gallery cache, Redis-backed when configured
	cacheConfig := cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	}
	backend, err := cache.New(cacheConfig)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	galleries := cache.NewGalleryCache(backend, cacheConfig.DefaultTTL)
	cacheBackend := "memory"
	if cfg.UseRedisCache() {
		cacheBackend = "redis"
	}
	slog.Info("cache initialized", "backend", cacheBackend, "ttl", cacheConfig.DefaultTTL)

	// GeoIP lookup for analytics, optional
	var geo *geoip.Lookup
	if cfg.GeoIPEnabled() {
		geo, err = geoip.New(cfg.GeoIPDBPath)
		if err != nil {
			slog.Warn("geoip unavailable, country tracking disabled", "error", err)
			geo = nil
		} else {
			defer func() {
				if err := geo.Close(); err != nil {
					slog.Error("closing geoip database", "error", err)
				}
			}()
		}
	}

	// Analytics collector: page views flow through a buffered channel
	// into the local database.
	collector := analytics.NewCollector(db, geo)
	defer collector.Close()
	slog.Info("analytics collector initialized")

	// Template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	contentFS, err := fs.Sub(web.Content, "content")
	if err != nil {
		return fmt.Errorf("getting content fs: %w", err)
	}

	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	uiState := ui.NewState(sessionManager)

	// Login protection
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	// Handlers
	maxUpload := int64(cfg.UploadMaxSize) << 20
	authHandler := handler.NewAuthHandler(sessions, renderer, loginProtection)
	siteHandler := handler.NewSiteHandler(api, galleries, renderer, uiState, contentFS)
	contactHandler := handler.NewContactHandler(api, renderer)
	bookingHandler := handler.NewBookingHandler(api, galleries, renderer)
	adminHandler := handler.NewAdminHandler(api, sessions, renderer, galleries, db, maxUpload)
	healthHandler := handler.NewHealthHandler(db, api)

	// Background jobs: analytics rollup, event log pruning, upload
	// progress sweeps, geoip reloads.
	sched := scheduler.New(db, geo, adminHandler.Progress(), logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Router
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.GetHead)
	r.Use(middleware.CompressSelective(5, 1024))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.RequestPath)
	r.Use(sessionManager.LoadAndSave)

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment()))

	// Health check (public)
	r.Get(handler.RouteHealth, healthHandler.Health)

	// Public site routes with analytics tracking
	r.Group(func(r chi.Router) {
		r.Use(collector.Middleware)
		r.Use(csrfMiddleware)

		r.Get(handler.RouteRoot, siteHandler.Home)
		r.Get(handler.RouteGallery, siteHandler.Gallery)
		r.Get(handler.RouteAbout, siteHandler.About)
		r.Get(handler.RouteServices, siteHandler.Services)

		r.Get(handler.RouteContact, contactHandler.ContactForm)
		r.Post(handler.RouteContact, contactHandler.ContactSubmit)

		r.Get(handler.RouteBooking, bookingHandler.BookingForm)
		r.Get(handler.RouteBookingQuote, bookingHandler.Quote)
		r.Post(handler.RouteBookingCheckout, bookingHandler.Checkout)
		r.Get(handler.RouteBookingSuccess, bookingHandler.Success)
		r.Get(handler.RouteBookingCancel, bookingHandler.Cancel)
	})

	// Auth routes with rate limiting on top of the account lockout
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(10, 20))
		r.Use(csrfMiddleware)

		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.Post(handler.RouteLogin, authHandler.Login)
		r.Post(handler.RouteLogout, authHandler.Logout)
	})

	// Admin routes (protected)
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.SkipCSRF("/admin/media/progress"))
		r.Use(csrfMiddleware)
		r.Use(middleware.RequireAuth(sessions))
		r.Use(middleware.RequireAdmin())

		r.Get(handler.RouteRoot, adminHandler.Dashboard)

		r.Route("/media", func(r chi.Router) {
			r.Get("/", adminHandler.MediaLibrary)
			r.Get("/upload", adminHandler.MediaUploadForm)
			r.Post("/upload", adminHandler.MediaUpload)
			r.Post("/progress", adminHandler.ProgressStart)
			r.Get("/progress/{id}", adminHandler.ProgressStatus)
			r.Get("/{id}/edit", adminHandler.MediaEditForm)
			r.Put(handler.RouteParamID, adminHandler.MediaUpdate)
			r.Post(handler.RouteParamID, adminHandler.MediaUpdate) // HTML forms can't send PUT
			r.Post("/{id}/delete", adminHandler.MediaDelete)
			r.Delete(handler.RouteParamID, adminHandler.MediaDelete)
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", adminHandler.Messages)
			r.Post("/{id}/read", adminHandler.MessageToggleRead)
			r.Post("/{id}/unread", adminHandler.MessageToggleRead)
			r.Post("/{id}/delete", adminHandler.MessageDelete)
			r.Delete(handler.RouteParamID, adminHandler.MessageDelete)
		})

		r.Get("/analytics", adminHandler.Analytics)
		r.Get("/events", adminHandler.Events)
	})

	// Static assets
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		renderer.Error(w, req, http.StatusNotFound, "The page you are looking for does not exist")
	})

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for large uploads
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
