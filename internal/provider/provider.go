package provider

import (
	"context"
	"fmt"
	"time"
)

// Grant is the result of exchanging an authorization code: an access
// token plus an optional expiry (zero when the gateway reports none).
type Grant struct {
	AccessToken string
	Expiry      time.Time
}

// UserProfile is the authenticated profile fetched from the gateway.
// UID and Network together identify the remote identity.
type UserProfile struct {
	UID       string  `json:"uid"`
	Network   string  `json:"network"`
	HumanName string  `json:"human_name"`
	Username  string  `json:"username"`
	Email     *string `json:"email"`
	Picture   *string `json:"picture"`
}

// Error is a gateway-reported failure carrying the machine code and the
// human message from the provider.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Client is the identity-gateway contract. Failures the gateway itself
// reports surface as *Error so callers can carry the code/message back
// to the end user on the error-redirect path; transport failures
// surface as external errors instead.
type Client interface {
	// InitURL builds the authorization URL that starts the
	// authorization-code flow for the given network.
	InitURL(network, redirectURI, state string) (string, error)

	// Token exchanges the authorization code for a grant. redirectURI
	// must be the exact value used to initiate the flow.
	Token(ctx context.Context, code, redirectURI string) (*Grant, error)

	// Me fetches the authenticated profile for an access token.
	Me(ctx context.Context, accessToken string) (*UserProfile, error)
}
