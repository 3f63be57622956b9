// Package login drives the completion of a social login: token
// exchange, account resolution, the pluggable validate/register hooks,
// and the handoff to the host session.
package login

import (
	"context"
	"log/slog"
	"time"

	"onesocial-server/internal/account"
	"onesocial-server/internal/hooks"
	"onesocial-server/internal/provider"
	"onesocial-server/internal/shared/errors"
	"onesocial-server/internal/user"
)

// AccountStore is the slice of the account service the orchestrator
// needs. *account.Service implements it.
type AccountStore interface {
	FindByAccessToken(ctx context.Context, accessToken string) (*account.Account, error)
	FindByIdentity(ctx context.Context, network, uid string) (*account.Account, error)
	GetProfile(ctx context.Context, accountID int) (*account.Profile, error)
	CreateAccount(ctx context.Context, accessToken string, expiresAt *time.Time) (*account.Account, error)
	CreateProfile(ctx context.Context, accountID int, np account.NewProfile) (*account.Profile, error)
	DeleteUnlinkedAccount(ctx context.Context, accountID int) error
	LinkUser(ctx context.Context, accountID, userID int) error
}

// UserGetter resolves linked host users. *user.Service implements it.
type UserGetter interface {
	GetByID(ctx context.Context, id int) (*user.User, error)
}

// Outcome is the terminal result of a completed callback: either an
// authenticated user, or a halt redirect issued by the validate hook.
type Outcome struct {
	User         *user.User
	HaltRedirect string
}

type Service struct {
	accounts AccountStore
	users    UserGetter
	client   provider.Client
	validate hooks.ValidateFunc
	register hooks.RegisterFunc
	logger   *slog.Logger
}

func NewService(
	accounts AccountStore,
	users UserGetter,
	client provider.Client,
	validate hooks.ValidateFunc,
	register hooks.RegisterFunc,
	logger *slog.Logger,
) *Service {
	logger.Debug("Initializing login service")

	return &Service{
		accounts: accounts,
		users:    users,
		client:   client,
		validate: validate,
		register: register,
		logger:   logger,
	}
}

// CompleteLogin runs the login-completion sequence for an authorization
// code. Provider failures surface as *provider.Error so the handler can
// carry the code/message to the error redirect.
func (s *Service) CompleteLogin(ctx context.Context, code, redirectURI string) (*Outcome, error) {
	grant, err := s.client.Token(ctx, code, redirectURI)
	if err != nil {
		return nil, err
	}

	acct, prof, err := s.resolveAccount(ctx, grant)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With(
		"account_id", acct.ID,
		"network", prof.Network,
		"uid", prof.UID,
	)

	// Returning user: the link already exists, so validate/register
	// are skipped and the session is finalized directly.
	if acct.UserID != nil {
		u, err := s.users.GetByID(ctx, *acct.UserID)
		if err != nil {
			return nil, err
		}
		logger.Info("Returning user authenticated", "user_id", u.ID)
		return &Outcome{User: u}, nil
	}

	result, err := s.validate(ctx, acct, prof)
	if err != nil {
		return nil, err
	}
	if result != nil {
		logger.Info("Validate hook halted login", "redirect", result.RedirectURL)
		return &Outcome{HaltRedirect: result.RedirectURL}, nil
	}

	u, err := s.CompleteRegistration(ctx, acct, prof)
	if err != nil {
		return nil, err
	}

	logger.Info("New identity registered", "user_id", u.ID)
	return &Outcome{User: u}, nil
}

// resolveAccount is the idempotency boundary: duplicate callbacks and
// double submissions land on the same Account/Profile pair.
func (s *Service) resolveAccount(ctx context.Context, grant *provider.Grant) (*account.Account, *account.Profile, error) {
	acct, err := s.accounts.FindByAccessToken(ctx, grant.AccessToken)
	if err != nil {
		return nil, nil, err
	}
	if acct != nil {
		prof, err := s.accounts.GetProfile(ctx, acct.ID)
		if err == nil {
			return acct, prof, nil
		}
		if errors.GetType(err) != errors.ErrorTypeNotFound {
			return nil, nil, err
		}
		// An account row without its profile is the remnant of a lost
		// creation race. Discard it and resolve from scratch.
		s.logger.Warn("Discarding account without profile", "account_id", acct.ID)
		if err := s.accounts.DeleteUnlinkedAccount(ctx, acct.ID); err != nil {
			return nil, nil, err
		}
	}

	me, err := s.client.Me(ctx, grant.AccessToken)
	if err != nil {
		return nil, nil, err
	}

	acct, err = s.accounts.FindByIdentity(ctx, me.Network, me.UID)
	if err != nil {
		return nil, nil, err
	}
	if acct != nil {
		prof, err := s.accounts.GetProfile(ctx, acct.ID)
		if err != nil {
			return nil, nil, err
		}
		return acct, prof, nil
	}

	var expiresAt *time.Time
	if !grant.Expiry.IsZero() {
		t := grant.Expiry
		expiresAt = &t
	}

	acct, err = s.accounts.CreateAccount(ctx, grant.AccessToken, expiresAt)
	if err != nil {
		return nil, nil, err
	}

	prof, err := s.accounts.CreateProfile(ctx, acct.ID, account.NewProfile{
		UID:       me.UID,
		Network:   me.Network,
		HumanName: me.HumanName,
		Username:  me.Username,
		Email:     me.Email,
		Picture:   me.Picture,
	})
	if err != nil {
		// A concurrent callback for the same identity created the pair
		// first; adopt the winner instead of failing the request. The
		// just-inserted account must not outlive its missing profile,
		// or a retried callback would resolve to it by access token.
		if errors.GetType(err) == errors.ErrorTypeConflict {
			if delErr := s.accounts.DeleteUnlinkedAccount(ctx, acct.ID); delErr != nil {
				return nil, nil, delErr
			}
			winner, lookupErr := s.accounts.FindByIdentity(ctx, me.Network, me.UID)
			if lookupErr == nil && winner != nil {
				winnerProf, profErr := s.accounts.GetProfile(ctx, winner.ID)
				if profErr == nil {
					s.logger.Info("Lost account-creation race, reusing winner",
						"network", me.Network, "uid", me.UID)
					return winner, winnerProf, nil
				}
			}
		}
		return nil, nil, err
	}

	return acct, prof, nil
}

// CompleteRegistration runs the register hook and links the resulting
// host user to the account. It is the single shared path to the linked
// state, used both by CompleteLogin and by the username-confirmation
// flow; an already-linked account short-circuits to its user.
func (s *Service) CompleteRegistration(ctx context.Context, acct *account.Account, prof *account.Profile) (*user.User, error) {
	if acct.UserID != nil {
		return s.users.GetByID(ctx, *acct.UserID)
	}

	u, err := s.register(ctx, acct, prof)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.LinkUser(ctx, acct.ID, u.ID); err != nil {
		// Lost a concurrent registration race; the existing link wins.
		if errors.GetType(err) == errors.ErrorTypeConflict {
			refreshed, lookupErr := s.accounts.FindByIdentity(ctx, prof.Network, prof.UID)
			if lookupErr == nil && refreshed != nil && refreshed.UserID != nil {
				return s.users.GetByID(ctx, *refreshed.UserID)
			}
		}
		return nil, err
	}

	acct.UserID = &u.ID
	return u, nil
}
