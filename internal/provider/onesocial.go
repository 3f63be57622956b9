package provider

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"onesocial-server/internal/shared/errors"

	"golang.org/x/oauth2"
)

// OneSocial talks to the OneSocial identity gateway, which fronts the
// individual social networks behind a single authorization-code flow.
type OneSocial struct {
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client
}

func NewOneSocial(clientID, clientSecret, baseURL string) *OneSocial {
	return &OneSocial{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *OneSocial) oauthConfig(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		RedirectURL:  redirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.baseURL + "/oauth/init",
			TokenURL:  c.baseURL + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// InitURL builds the gateway authorization URL. The target network
// rides along as an extra auth-URL parameter; response_type=code is
// implied by the code flow.
func (c *OneSocial) InitURL(network, redirectURI, state string) (string, error) {
	if network == "" {
		return "", errors.Validationf("network is required")
	}

	cfg := c.oauthConfig(redirectURI)
	return cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("network", network)), nil
}

func (c *OneSocial) Token(ctx context.Context, code, redirectURI string) (*Grant, error) {
	logger := slog.With("component", "onesocial", "operation", "token")
	logger.Debug("Exchanging authorization code for access token")

	cfg := c.oauthConfig(redirectURI)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if stderrors.As(err, &re) {
			code := re.ErrorCode
			if code == "" {
				code = "token_exchange_failed"
			}
			logger.Warn("Gateway rejected token exchange",
				"error_code", code,
				"error_description", re.ErrorDescription)
			return nil, &Error{Code: code, Message: re.ErrorDescription}
		}
		logger.Error("Token exchange failed", "error", err)
		return nil, errors.WrapExternal("identity gateway unreachable", err)
	}

	logger.Debug("Successfully exchanged code for token")
	return &Grant{AccessToken: tok.AccessToken, Expiry: tok.Expiry}, nil
}

func (c *OneSocial) Me(ctx context.Context, accessToken string) (*UserProfile, error) {
	logger := slog.With("component", "onesocial", "operation", "me")
	logger.Debug("Fetching authenticated profile from gateway")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/me", nil)
	if err != nil {
		return nil, errors.WrapInternal("failed to build profile request", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Profile fetch failed", "error", err)
		return nil, errors.WrapExternal("identity gateway unreachable", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		gwErr := parseGatewayError(resp)
		logger.Warn("Gateway rejected profile fetch",
			"status_code", resp.StatusCode,
			"error_code", gwErr.Code)
		return nil, gwErr
	}

	var profile UserProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		logger.Error("Failed to decode profile", "error", err)
		return nil, &Error{Code: "invalid_profile", Message: "failed to decode profile response"}
	}

	if profile.UID == "" || profile.Network == "" {
		logger.Error("Profile missing identity fields",
			"has_uid", profile.UID != "",
			"has_network", profile.Network != "")
		return nil, &Error{Code: "invalid_profile", Message: "profile missing uid or network"}
	}

	logger.Debug("Profile fetched",
		"network", profile.Network,
		"uid", profile.UID,
		"has_email", profile.Email != nil)

	return &profile, nil
}

func parseGatewayError(resp *http.Response) *Error {
	var body struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return &Error{Code: body.Error, Message: body.ErrorDescription}
	}
	return &Error{Code: fmt.Sprintf("http_%d", resp.StatusCode), Message: resp.Status}
}
