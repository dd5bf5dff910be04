package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alextreichler/lessonshop/internal/config"
	"github.com/alextreichler/lessonshop/internal/handlers"
	"github.com/alextreichler/lessonshop/internal/lessonapi"
	"github.com/alextreichler/lessonshop/internal/shop"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// 2. Lessons backend
	var api lessonapi.API
	if cfg.StaticMode() {
		slog.Warn("API_ORIGIN not set, serving the built-in lesson list")
		api = lessonapi.NewStaticCatalog(lessonapi.DefaultLessons, "")
	} else {
		slog.Info("Using lessons backend", "origin", cfg.APIOrigin, "timeout", cfg.APITimeout)
		api = lessonapi.NewClient(cfg.APIOrigin, cfg.APITimeout)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := shop.DefaultOptions()
	opts.Logger = logger
	registry := shop.NewRegistry(func() *shop.Storefront {
		return shop.New(api, opts)
	}, cfg.SessionIdle)
	go registry.Run(ctx)

	// 3. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	sessionStore.Options.MaxAge = int(cfg.SessionIdle.Seconds())
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}

	// 4. Init Templates
	templates := handlers.NewTemplateCache()
	if err := handlers.LoadTemplates(templates); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	// 5. Routes
	shopHandler := &handlers.ShopHandler{
		Registry:       registry,
		Templates:      templates,
		SessionStore:   sessionStore,
		RequestTimeout: cfg.APITimeout,
	}
	rateLimiter := handlers.NewRateLimiter(ctx, 2*time.Second)
	mux := shopHandler.Routes(rateLimiter)
	if cfg.StaticMode() {
		mux.Handle("GET /images/", http.StripPrefix("/images/", http.FileServer(http.Dir(cfg.ImagesDir))))
	}

	// 6. Middleware Setup
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.Path("/"),
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	// Chain: Logger -> Security Headers -> CSRF -> Mux
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(cfg.APIOrigin)(
			CSRF(mux),
		),
	)

	// 7. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts end with ctx, which also ends open event streams.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", cfg.Port, "static", cfg.StaticMode())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-stop

	slog.Info("Shutting down server gracefully...")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}
