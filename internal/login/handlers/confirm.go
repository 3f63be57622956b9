package handlers

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"regexp"

	"onesocial-server/internal/account"
	"onesocial-server/internal/shared/response"
	"onesocial-server/internal/user"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9._-]{3,30}$`)

var confirmTemplate = template.Must(template.New("confirm-username").Parse(`<!DOCTYPE html>
<html>
<head><title>Confirm username</title></head>
<body>
  <h1>Confirm your username</h1>
  {{if .ErrorMessage}}<p class="error">{{.ErrorMessage}}</p>{{end}}
  <form method="post" action="/auth/confirm-username/{{.AccountToken}}">
    <label for="username">Username</label>
    <input type="text" id="username" name="username" value="{{.Username}}">
    <button type="submit">Continue</button>
  </form>
</body>
</html>
`))

type confirmForm struct {
	AccountToken string
	Username     string
	ErrorMessage string
}

// accountFinder is the slice of the account service the confirmation
// flow needs; *account.Service implements it.
type accountFinder interface {
	FindByAccountToken(ctx context.Context, accountToken string) (*account.Account, error)
	GetProfile(ctx context.Context, accountID int) (*account.Profile, error)
	SetUsername(ctx context.Context, accountID int, username string) error
}

// registrar completes a deferred registration; *login.Service
// implements it with the same shared path the automatic flow uses.
type registrar interface {
	CompleteRegistration(ctx context.Context, acct *account.Account, prof *account.Profile) (*user.User, error)
}

// ConfirmUsernameHandler serves the username-confirmation sub-step a
// validate hook can defer registration to. The account token from the
// halt redirect is the only credential.
type ConfirmUsernameHandler struct {
	accounts accountFinder
	service  registrar
}

func NewConfirmUsernameHandler(accounts accountFinder, service registrar) *ConfirmUsernameHandler {
	return &ConfirmUsernameHandler{
		accounts: accounts,
		service:  service,
	}
}

func (h *ConfirmUsernameHandler) resolve(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*account.Account, *account.Profile, bool) {
	token := r.PathValue("accountToken")

	acct, err := h.accounts.FindByAccountToken(r.Context(), token)
	if err != nil {
		response.Error(w, r, logger, err)
		return nil, nil, false
	}

	prof, err := h.accounts.GetProfile(r.Context(), acct.ID)
	if err != nil {
		response.Error(w, r, logger, err)
		return nil, nil, false
	}

	return acct, prof, true
}

func (h *ConfirmUsernameHandler) render(w http.ResponseWriter, logger *slog.Logger, form confirmForm) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := confirmTemplate.Execute(w, form); err != nil {
		logger.Error("Failed to render confirm-username form", "error", err)
	}
}

// HandleForm renders the form pre-filled with the latinized username
// candidate from the profile.
func (h *ConfirmUsernameHandler) HandleForm(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "confirm_username_form", "ip", r.RemoteAddr)

	acct, prof, ok := h.resolve(w, r, logger)
	if !ok {
		return
	}

	h.render(w, logger, confirmForm{
		AccountToken: acct.AccountToken,
		Username:     prof.Username,
	})
}

// HandleSubmit validates and persists the corrected username, then
// completes the deferred registration and establishes the session.
func (h *ConfirmUsernameHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "confirm_username_submit", "ip", r.RemoteAddr)

	acct, prof, ok := h.resolve(w, r, logger)
	if !ok {
		return
	}

	username := user.NormalizeUsername(r.FormValue("username"))
	if !usernamePattern.MatchString(username) {
		logger.Debug("Rejected username candidate", "username", username)
		h.render(w, logger, confirmForm{
			AccountToken: acct.AccountToken,
			Username:     r.FormValue("username"),
			ErrorMessage: "Usernames are 3-30 characters: lowercase letters, digits, dots, dashes or underscores.",
		})
		return
	}

	if err := h.accounts.SetUsername(r.Context(), acct.ID, username); err != nil {
		response.Error(w, r, logger, err)
		return
	}
	prof.Username = username

	u, err := h.service.CompleteRegistration(r.Context(), acct, prof)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	finishLogin(w, r, logger, u)
}
