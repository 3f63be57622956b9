package handlers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"onesocial-server/internal/login"
	"onesocial-server/internal/provider"
	"onesocial-server/internal/shared/config"
	"onesocial-server/internal/shared/errors"
	"onesocial-server/internal/shared/response"
)

// completer is the orchestrator surface the callback needs;
// *login.Service implements it.
type completer interface {
	CompleteLogin(ctx context.Context, code, redirectURI string) (*login.Outcome, error)
}

// CallbackHandler terminates the authorization-code flow: it receives
// the gateway redirect and drives the login-completion sequence.
type CallbackHandler struct {
	service completer
	states  login.StateStore
}

func NewCallbackHandler(service completer, states login.StateStore) *CallbackHandler {
	return &CallbackHandler{
		service: service,
		states:  states,
	}
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := q.Get("code")
	state := q.Get("state")

	logger := slog.With(
		"handler", "complete_login",
		"ip", r.RemoteAddr,
		"has_code", code != "",
		"has_state", state != "",
	)

	// Provider denied or failed the authorization before issuing a code.
	if errParam := q.Get("error"); errParam != "" {
		logger.Warn("Authorization denied by provider",
			"oauth_error", errParam,
			"error_description", q.Get("error_description"))
		redirectToErrorURL(w, r, errParam, q.Get("error_description"), state)
		return
	}

	// Neither code nor error is a protocol violation, not a login attempt.
	if code == "" {
		response.Error(w, r, logger, errors.NotFoundf("callback carries neither code nor error"))
		return
	}

	if state != "" && !h.states.Consume(r.Context(), state) {
		logger.Warn("Unknown or expired state token")
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	outcome, err := h.service.CompleteLogin(ctx, code, config.GlobalConfig.RedirectURI())
	if err != nil {
		var provErr *provider.Error
		if stderrors.As(err, &provErr) {
			logger.Warn("Provider rejected login completion",
				"error_code", provErr.Code,
				"error_message", provErr.Message)
			redirectToErrorURL(w, r, provErr.Code, provErr.Message, state)
			return
		}
		response.Error(w, r, logger, err)
		return
	}

	if outcome.HaltRedirect != "" {
		logger.Info("Login halted by validate hook", "redirect", outcome.HaltRedirect)
		http.Redirect(w, r, outcome.HaltRedirect, http.StatusFound)
		return
	}

	finishLogin(w, r, logger, outcome.User)
}
