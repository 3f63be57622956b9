package handlers

import (
	"context"
	"testing"
	"time"

	"onesocial-server/internal/shared/config"
)

func setTestConfig(t *testing.T) {
	t.Helper()

	prev := config.GlobalConfig
	config.GlobalConfig = &config.Config{
		Server: config.ServerConfig{
			Port: "8080",
			URL:  "http://localhost:8080",
		},
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-test-secret-test-secret!",
			TokenExpiration: time.Hour,
			CookieSameSite:  "lax",
		},
		OneSocial: config.OneSocialConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			BaseURL:      "https://gw.example.com",
			ErrorURL:     "/error",
			LoggedInURL:  "/welcome",
		},
		Frontend: config.FrontendConfig{
			URL: "http://localhost:3000",
		},
	}
	t.Cleanup(func() { config.GlobalConfig = prev })
}

type fakeStates struct {
	issued   string
	issueErr error
	known    map[string]bool
	consumed []string
}

func (f *fakeStates) Issue(_ context.Context) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	return f.issued, nil
}

func (f *fakeStates) Consume(_ context.Context, state string) bool {
	f.consumed = append(f.consumed, state)
	return f.known[state]
}
