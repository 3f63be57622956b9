package hooks

import (
	"context"
	"log/slog"
	"strings"

	"onesocial-server/internal/account"
	"onesocial-server/internal/user"
)

// NoopValidate accepts every account without interrupting the flow.
func NoopValidate(ctx context.Context, acct *account.Account, prof *account.Profile) (*ValidateResult, error) {
	return nil, nil
}

// ConfirmUsernameValidate defers registration to the username
// confirmation form, keyed by the opaque account token.
func ConfirmUsernameValidate(ctx context.Context, acct *account.Account, prof *account.Profile) (*ValidateResult, error) {
	return &ValidateResult{RedirectURL: "/auth/confirm-username/" + acct.AccountToken}, nil
}

// DefaultRegister resolves the remote identity to a host user. An
// existing user sharing the normalized email is reused (merge by
// email); otherwise a new user is created under a collision-free
// normalized username.
func DefaultRegister(users *user.Service) RegisterFunc {
	return func(ctx context.Context, acct *account.Account, prof *account.Profile) (*user.User, error) {
		logger := slog.With(
			"component", "hooks",
			"operation", "default_register",
			"network", prof.Network,
			"uid", prof.UID,
		)

		email := ""
		if prof.Email != nil {
			email = user.NormalizeEmail(*prof.Email)
		}

		if email != "" {
			existing, err := users.FindByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				logger.Info("Reusing existing user by email", "user_id", existing.ID)
				return existing, nil
			}
		}

		base := user.NormalizeUsername(prof.Username)
		if base == "" && email != "" {
			if idx := strings.Index(email, "@"); idx > 0 {
				base = user.NormalizeUsername(email[:idx])
			}
		}
		if base == "" {
			base = "user"
		}

		username, err := users.FindFreeUsername(ctx, base)
		if err != nil {
			return nil, err
		}

		logger.Info("Creating new user", "username", username)
		return users.Create(ctx, username, email, prof.HumanName, prof.Picture)
	}
}
