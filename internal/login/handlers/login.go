package handlers

import (
	"log/slog"
	"net/http"

	"onesocial-server/internal/login"
	"onesocial-server/internal/provider"
	"onesocial-server/internal/shared/config"
	"onesocial-server/internal/shared/response"
)

// InitHandler starts the authorization-code flow for a network by
// redirecting to the gateway's authorization URL.
type InitHandler struct {
	client provider.Client
	states login.StateStore
}

func NewInitHandler(client provider.Client, states login.StateStore) *InitHandler {
	return &InitHandler{
		client: client,
		states: states,
	}
}

func (h *InitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	network := r.PathValue("network")

	logger := slog.With(
		"handler", "login_init",
		"network", network,
		"ip", r.RemoteAddr,
	)

	state, err := h.states.Issue(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	initURL, err := h.client.InitURL(network, config.GlobalConfig.RedirectURI(), state)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	logger.Info("Initiating social login", "network", network)
	http.Redirect(w, r, initURL, http.StatusFound)
}
