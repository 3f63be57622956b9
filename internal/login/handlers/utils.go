package handlers

import (
	"log/slog"
	"net/http"
	"net/url"

	"onesocial-server/internal/session"
	"onesocial-server/internal/shared/config"
	"onesocial-server/internal/shared/cookies"
	"onesocial-server/internal/shared/response"
	"onesocial-server/internal/user"
)

// redirectToErrorURL sends the end user to the configured error page
// carrying the provider's machine code, human message and the echoed
// state. Empty values are carried explicitly.
func redirectToErrorURL(w http.ResponseWriter, r *http.Request, errCode, errDescription, state string) {
	cfg := config.GlobalConfig

	q := url.Values{}
	q.Set("error", errCode)
	q.Set("error_description", errDescription)
	q.Set("state", state)

	http.Redirect(w, r, cfg.OneSocial.ErrorURL+"?"+q.Encode(), http.StatusFound)
}

// finishLogin establishes the host session for a registered user and
// redirects to the configured logged-in page. Both the automatic
// completion path and the username-confirmation path end here.
func finishLogin(w http.ResponseWriter, r *http.Request, logger *slog.Logger, u *user.User) {
	token, err := session.GenerateJWT(u)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	cookies.SetAuthCookie(w, token)

	logger.Info("Session established", "user_id", u.ID, "username", u.Username)
	http.Redirect(w, r, config.GlobalConfig.OneSocial.LoggedInURL, http.StatusFound)
}
