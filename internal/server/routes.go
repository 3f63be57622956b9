package server

import (
	"log/slog"
	"net/http"

	"onesocial-server/internal/account"
	"onesocial-server/internal/login"
	loginHandlers "onesocial-server/internal/login/handlers"
	"onesocial-server/internal/middleware"
	"onesocial-server/internal/provider"
	serverHandlers "onesocial-server/internal/server/handlers"
	"onesocial-server/internal/shared/database"
	userHandlers "onesocial-server/internal/user/handlers"
)

type Routes struct {
	db           *database.DB
	accounts     *account.Service
	loginService *login.Service
	client       provider.Client
	states       login.StateStore
	logger       *slog.Logger
}

func NewRoutes(
	db *database.DB,
	accounts *account.Service,
	loginService *login.Service,
	client provider.Client,
	states login.StateStore,
	logger *slog.Logger,
) *Routes {
	return &Routes{
		db:           db,
		accounts:     accounts,
		loginService: loginService,
		client:       client,
		states:       states,
		logger:       logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.db)
	meHandler := userHandlers.NewMeHandler()

	initHandler := loginHandlers.NewInitHandler(r.client, r.states)
	callbackHandler := loginHandlers.NewCallbackHandler(r.loginService, r.states)
	confirmHandler := loginHandlers.NewConfirmUsernameHandler(r.accounts, r.loginService)
	logoutHandler := loginHandlers.NewLogoutHandler()

	// Public endpoints
	mux.Handle("GET /api/health", healthHandler)

	// Protected endpoints
	mux.Handle("GET /api/me", middleware.JWTMiddleware(meHandler))

	// Login flow
	mux.Handle("GET /auth/login/{network}", initHandler)
	mux.Handle("GET /auth/callback", callbackHandler)
	mux.HandleFunc("GET /auth/confirm-username/{accountToken}", confirmHandler.HandleForm)
	mux.HandleFunc("POST /auth/confirm-username/{accountToken}", confirmHandler.HandleSubmit)
	mux.Handle("POST /auth/logout", logoutHandler)

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"/api/health"},
		"protected_endpoints", []string{"/api/me"},
		"auth_endpoints", []string{"/auth/login/{network}", "/auth/callback", "/auth/confirm-username/{accountToken}", "/auth/logout"},
	)

	return mux
}
