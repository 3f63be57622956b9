package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"onesocial-server/internal/account"
	"onesocial-server/internal/hooks"
	"onesocial-server/internal/login"
	"onesocial-server/internal/middleware"
	"onesocial-server/internal/provider"
	"onesocial-server/internal/server"
	"onesocial-server/internal/shared/config"
	"onesocial-server/internal/shared/database"
	"onesocial-server/internal/shared/logger"
	redisx "onesocial-server/internal/shared/redis"
	"onesocial-server/internal/user"
)

func main() {
	if err := config.Init(); err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}
	cfg := config.GlobalConfig

	logger.Init()
	log := slog.With("component", "main")

	db, err := database.Connect()
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}()

	if err := db.RunMigrations(); err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	rdb, err := redisx.Connect()
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error("Failed to close Redis", "error", err)
		}
	}()

	userService := user.NewService(user.NewRepository(db), slog.With("component", "user_service"))
	accountService := account.NewService(account.NewRepository(db), slog.With("component", "account_service"))

	registry := hooks.NewRegistry(userService)
	validateHook, err := registry.Validate(cfg.OneSocial.ValidateHook)
	if err != nil {
		log.Error("Failed to resolve validate hook", "hook", cfg.OneSocial.ValidateHook, "error", err)
		os.Exit(1)
	}
	registerHook, err := registry.Register(cfg.OneSocial.RegisterHook)
	if err != nil {
		log.Error("Failed to resolve register hook", "hook", cfg.OneSocial.RegisterHook, "error", err)
		os.Exit(1)
	}

	client := provider.NewOneSocial(
		cfg.OneSocial.ClientID,
		cfg.OneSocial.ClientSecret,
		cfg.OneSocial.BaseURL,
	)

	states := login.NewStateStore(rdb, cfg.OneSocial.StateTTL)

	loginService := login.NewService(
		accountService,
		userService,
		client,
		validateHook,
		registerHook,
		slog.With("component", "login_service"),
	)

	routes := server.NewRoutes(db, accountService, loginService, client, states, slog.With("component", "routes"))
	mux := routes.Setup()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)
	corsMiddleware := middleware.NewCORS()

	handler := corsMiddleware.Middleware(rateLimiter.Middleware(mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Server starting",
			"port", cfg.Server.Port,
			"environment", cfg.Server.Environment,
			"redirect_uri", cfg.RedirectURI(),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped")
}
