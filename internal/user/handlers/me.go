package handlers

import (
	"log/slog"
	"net/http"

	"onesocial-server/internal/middleware"
	"onesocial-server/internal/shared/errors"
	"onesocial-server/internal/shared/response"
)

// MeHandler returns the session identity for the authenticated user.
type MeHandler struct{}

func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "me")

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, logger, errors.Unauthorized("authentication required"))
		return
	}

	response.Success(w, http.StatusOK, map[string]interface{}{
		"user_id":  claims.UserID,
		"username": claims.Username,
		"email":    claims.Email,
	})
}
