package account

import "time"

// Account is the local record for one authenticated link to a remote
// identity. AccountToken is generated once and never changes; UserID is
// absent until registration completes and is set exactly once.
type Account struct {
	ID           int        `json:"id"`
	AccountToken string     `json:"account_token"`
	UserID       *int       `json:"user_id"`
	AccessToken  string     `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at"`
	ExtraData    string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`

	extra map[string]interface{}
}

// Profile is the snapshot of the remote identity's public attributes,
// owned one-to-one by an Account. Only Username is ever corrected after
// creation (username-confirmation step).
type Profile struct {
	ID        int       `json:"id"`
	AccountID int       `json:"account_id"`
	UID       string    `json:"uid"`
	Network   string    `json:"network"`
	HumanName string    `json:"human_name"`
	Username  string    `json:"username"`
	Email     *string   `json:"email"`
	Picture   *string   `json:"picture"`
	CreatedAt time.Time `json:"created_at"`
}

// NewProfile carries the provider-fetched attributes for profile creation.
type NewProfile struct {
	UID       string
	Network   string
	HumanName string
	Username  string
	Email     *string
	Picture   *string
}
