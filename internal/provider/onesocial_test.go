package provider

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onesocial-server/internal/shared/errors"
)

func TestInitURL(t *testing.T) {
	c := NewOneSocial("client-id", "client-secret", "https://gw.example.com")

	raw, err := c.InitURL("github", "https://app.example.com/auth/callback", "nonce-1")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "gw.example.com", u.Host)
	assert.Equal(t, "/oauth/init", u.Path)

	q := u.Query()
	assert.Equal(t, "github", q.Get("network"))
	assert.Equal(t, "nonce-1", q.Get("state"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "https://app.example.com/auth/callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
}

func TestInitURLRequiresNetwork(t *testing.T) {
	c := NewOneSocial("client-id", "client-secret", "https://gw.example.com")

	_, err := c.InitURL("", "https://app.example.com/auth/callback", "nonce-1")
	assert.Error(t, err)
}

func TestTokenExchange(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		assert.Equal(t, "the-code", r.FormValue("code"))
		assert.Equal(t, "https://app.example.com/auth/callback", r.FormValue("redirect_uri"))
		assert.Equal(t, "client-id", r.FormValue("client_id"))
		assert.Equal(t, "client-secret", r.FormValue("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at1","token_type":"bearer","expires_in":3600}`))
	}))
	defer ts.Close()

	c := NewOneSocial("client-id", "client-secret", ts.URL)

	grant, err := c.Token(context.Background(), "the-code", "https://app.example.com/auth/callback")
	require.NoError(t, err)
	assert.Equal(t, "at1", grant.AccessToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), grant.Expiry, time.Minute)
}

func TestTokenExchangeGatewayError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"code expired"}`))
	}))
	defer ts.Close()

	c := NewOneSocial("client-id", "client-secret", ts.URL)

	_, err := c.Token(context.Background(), "stale-code", "https://app.example.com/auth/callback")
	require.Error(t, err)

	var provErr *Error
	require.True(t, stderrors.As(err, &provErr))
	assert.Equal(t, "invalid_grant", provErr.Code)
	assert.Equal(t, "code expired", provErr.Message)
}

func TestTokenExchangeUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // refuse connections

	c := NewOneSocial("client-id", "client-secret", ts.URL)

	_, err := c.Token(context.Background(), "the-code", "https://app.example.com/auth/callback")
	require.Error(t, err)

	var provErr *Error
	assert.False(t, stderrors.As(err, &provErr), "transport failures are not gateway errors")
	assert.Equal(t, errors.ErrorTypeExternal, errors.GetType(err))
}

func TestMeUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // refuse connections

	c := NewOneSocial("client-id", "client-secret", ts.URL)

	_, err := c.Me(context.Background(), "at1")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeExternal, errors.GetType(err))
}

func TestMe(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/me", r.URL.Path)
		require.Equal(t, "Bearer at1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"uid":"42","network":"github","human_name":"Maria","username":"maria","email":"maria@example.com","picture":null}`))
	}))
	defer ts.Close()

	c := NewOneSocial("client-id", "client-secret", ts.URL)

	prof, err := c.Me(context.Background(), "at1")
	require.NoError(t, err)
	assert.Equal(t, "42", prof.UID)
	assert.Equal(t, "github", prof.Network)
	assert.Equal(t, "Maria", prof.HumanName)
	assert.Equal(t, "maria", prof.Username)
	require.NotNil(t, prof.Email)
	assert.Equal(t, "maria@example.com", *prof.Email)
	assert.Nil(t, prof.Picture)
}

func TestMeGatewayError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_token","error_description":"token revoked"}`))
	}))
	defer ts.Close()

	c := NewOneSocial("client-id", "client-secret", ts.URL)

	_, err := c.Me(context.Background(), "revoked")
	require.Error(t, err)

	var provErr *Error
	require.True(t, stderrors.As(err, &provErr))
	assert.Equal(t, "invalid_token", provErr.Code)
	assert.Equal(t, "token revoked", provErr.Message)
}

func TestMeOpaqueGatewayError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream blew up"))
	}))
	defer ts.Close()

	c := NewOneSocial("client-id", "client-secret", ts.URL)

	_, err := c.Me(context.Background(), "at1")
	require.Error(t, err)

	var provErr *Error
	require.True(t, stderrors.As(err, &provErr))
	assert.Equal(t, "http_502", provErr.Code)
}

func TestMeRejectsProfileWithoutIdentity(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"username":"maria"}`))
	}))
	defer ts.Close()

	c := NewOneSocial("client-id", "client-secret", ts.URL)

	_, err := c.Me(context.Background(), "at1")
	require.Error(t, err)

	var provErr *Error
	require.True(t, stderrors.As(err, &provErr))
	assert.Equal(t, "invalid_profile", provErr.Code)
}

func TestProviderErrorString(t *testing.T) {
	assert.Equal(t, "invalid_grant: code expired", (&Error{Code: "invalid_grant", Message: "code expired"}).Error())
	assert.Equal(t, "invalid_grant", (&Error{Code: "invalid_grant"}).Error())
}
