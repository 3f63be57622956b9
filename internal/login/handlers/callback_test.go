package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onesocial-server/internal/login"
	"onesocial-server/internal/provider"
	"onesocial-server/internal/shared/errors"
	"onesocial-server/internal/user"
)

type fakeCompleter struct {
	outcome *login.Outcome
	err     error

	calls       int
	gotCode     string
	gotRedirect string
}

func (f *fakeCompleter) CompleteLogin(_ context.Context, code, redirectURI string) (*login.Outcome, error) {
	f.calls++
	f.gotCode = code
	f.gotRedirect = redirectURI
	if f.err != nil {
		return nil, f.err
	}
	return f.outcome, nil
}

func serveCallback(t *testing.T, target string, completer *fakeCompleter, states *fakeStates) *httptest.ResponseRecorder {
	t.Helper()

	if states.known == nil {
		states.known = make(map[string]bool)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	NewCallbackHandler(completer, states).ServeHTTP(rec, req)
	return rec
}

func TestCallbackProviderDenied(t *testing.T) {
	setTestConfig(t)
	completer := &fakeCompleter{}

	rec := serveCallback(t, "/auth/callback?error=access_denied&state=xyz", completer, &fakeStates{})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/error?error=access_denied&error_description=&state=xyz", rec.Header().Get("Location"))
	assert.Equal(t, 0, completer.calls, "denied authorization must not hit the orchestrator")
}

func TestCallbackDeniedWithDescription(t *testing.T) {
	setTestConfig(t)

	rec := serveCallback(t, "/auth/callback?error=server_error&error_description=try+again&state=xyz", &fakeCompleter{}, &fakeStates{})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/error?error=server_error&error_description=try+again&state=xyz", rec.Header().Get("Location"))
}

func TestCallbackWithoutCodeOrError(t *testing.T) {
	setTestConfig(t)
	completer := &fakeCompleter{}

	rec := serveCallback(t, "/auth/callback", completer, &fakeStates{})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, completer.calls)
}

func TestCallbackSuccess(t *testing.T) {
	setTestConfig(t)
	completer := &fakeCompleter{outcome: &login.Outcome{User: &user.User{ID: 7, Username: "maria"}}}
	states := &fakeStates{known: map[string]bool{"xyz": true}}

	rec := serveCallback(t, "/auth/callback?code=the-code&state=xyz", completer, states)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/welcome", rec.Header().Get("Location"))
	assert.Equal(t, "the-code", completer.gotCode)
	assert.Equal(t, "http://localhost:8080/auth/callback", completer.gotRedirect)
	assert.Equal(t, []string{"xyz"}, states.consumed)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "auth_token", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestCallbackUnknownStateIsLenient(t *testing.T) {
	setTestConfig(t)
	completer := &fakeCompleter{outcome: &login.Outcome{User: &user.User{ID: 7, Username: "maria"}}}

	rec := serveCallback(t, "/auth/callback?code=the-code&state=stale", completer, &fakeStates{})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/welcome", rec.Header().Get("Location"))
	assert.Equal(t, 1, completer.calls, "an unknown state is logged, not fatal")
}

func TestCallbackProviderErrorRedirects(t *testing.T) {
	setTestConfig(t)
	completer := &fakeCompleter{err: &provider.Error{Code: "invalid_grant", Message: "code expired"}}

	rec := serveCallback(t, "/auth/callback?code=stale&state=xyz", completer, &fakeStates{})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/error?error=invalid_grant&error_description=code+expired&state=xyz", rec.Header().Get("Location"))
}

func TestCallbackGatewayUnreachable(t *testing.T) {
	setTestConfig(t)
	completer := &fakeCompleter{err: errors.WrapExternal("identity gateway unreachable", stderrors.New("connection refused"))}

	rec := serveCallback(t, "/auth/callback?code=the-code&state=xyz", completer, &fakeStates{})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestCallbackHaltRedirect(t *testing.T) {
	setTestConfig(t)
	completer := &fakeCompleter{outcome: &login.Outcome{HaltRedirect: "/auth/confirm-username/tok123"}}

	rec := serveCallback(t, "/auth/callback?code=the-code", completer, &fakeStates{})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/confirm-username/tok123", rec.Header().Get("Location"))
	assert.Empty(t, rec.Result().Cookies(), "halted login must not establish a session")
}

func TestInitHandlerRedirects(t *testing.T) {
	setTestConfig(t)

	client := provider.NewOneSocial("client-id", "client-secret", "https://gw.example.com")
	states := &fakeStates{issued: "nonce-1"}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/login/github", nil)
	req.SetPathValue("network", "github")
	NewInitHandler(client, states).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	location := rec.Header().Get("Location")
	assert.Contains(t, location, "https://gw.example.com/oauth/init")
	assert.Contains(t, location, "network=github")
	assert.Contains(t, location, "state=nonce-1")
}

func TestInitHandlerRequiresNetwork(t *testing.T) {
	setTestConfig(t)

	client := provider.NewOneSocial("client-id", "client-secret", "https://gw.example.com")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/login/", nil)
	NewInitHandler(client, &fakeStates{issued: "nonce-1"}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
