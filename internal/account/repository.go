package account

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"onesocial-server/internal/shared/database"
	"onesocial-server/internal/shared/errors"

	"github.com/lib/pq"
)

const accountColumns = "id, account_token, user_id, access_token, expires_at, extra_data, created_at"

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) scanAccount(row *sql.Row) (*Account, error) {
	var a Account
	err := row.Scan(
		&a.ID,
		&a.AccountToken,
		&a.UserID,
		&a.AccessToken,
		&a.ExpiresAt,
		&a.ExtraData,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) FindByAccessToken(ctx context.Context, accessToken string) (*Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM social_accounts
		WHERE access_token = $1
	`

	a, err := r.scanAccount(r.db.QueryRowContext(ctx, query, accessToken))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.WrapInternal("failed to find account by access token", err)
	}
	return a, nil
}

func (r *Repository) FindByIdentity(ctx context.Context, network, uid string) (*Account, error) {
	query := `
		SELECT a.id, a.account_token, a.user_id, a.access_token, a.expires_at, a.extra_data, a.created_at
		FROM social_accounts a
		JOIN social_profiles p ON p.account_id = a.id
		WHERE p.network = $1 AND p.uid = $2
	`

	a, err := r.scanAccount(r.db.QueryRowContext(ctx, query, network, uid))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.WrapInternal("failed to find account by identity", err)
	}
	return a, nil
}

func (r *Repository) FindByAccountToken(ctx context.Context, accountToken string) (*Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM social_accounts
		WHERE account_token = $1
	`

	a, err := r.scanAccount(r.db.QueryRowContext(ctx, query, accountToken))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundf("account not found for token")
		}
		return nil, errors.WrapInternal("failed to find account by account token", err)
	}
	return a, nil
}

// CreateAccount inserts a new account with a freshly generated account
// token. A uniqueness violation on the token means a random collision;
// the token is regenerated and the insert retried.
func (r *Repository) CreateAccount(ctx context.Context, accessToken string, expiresAt *time.Time) (*Account, error) {
	query := `
		INSERT INTO social_accounts (account_token, access_token, expires_at, extra_data)
		VALUES ($1, $2, $3, '')
		RETURNING ` + accountColumns + `
	`

	for attempt := 0; attempt < 3; attempt++ {
		token, err := NewAccountToken()
		if err != nil {
			return nil, errors.WrapInternal("failed to generate account token", err)
		}

		a, err := r.scanAccount(r.db.QueryRowContext(ctx, query, token, accessToken, expiresAt))
		if err == nil {
			return a, nil
		}
		if isUniqueViolation(err, "social_accounts_account_token_key") {
			continue
		}
		return nil, errors.WrapInternal("failed to create account", err)
	}

	return nil, errors.WrapInternal("failed to create account", errors.Conflictf("account token collision persisted across retries"))
}

// CreateProfile inserts the one profile owned by an account. A
// uniqueness violation on (network, uid) or on the account link means a
// concurrent callback won the race; it surfaces as a conflict so the
// caller can re-resolve by lookup.
func (r *Repository) CreateProfile(ctx context.Context, accountID int, np NewProfile) (*Profile, error) {
	query := `
		INSERT INTO social_profiles (account_id, uid, network, human_name, username, email, picture)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, account_id, uid, network, human_name, username, email, picture, created_at
	`

	var p Profile
	err := r.db.QueryRowContext(ctx, query,
		accountID, np.UID, np.Network, np.HumanName, np.Username, np.Email, np.Picture,
	).Scan(
		&p.ID,
		&p.AccountID,
		&p.UID,
		&p.Network,
		&p.HumanName,
		&p.Username,
		&p.Email,
		&p.Picture,
		&p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return nil, errors.Conflictf("profile already exists for %s/%s", np.Network, np.UID)
		}
		return nil, errors.WrapInternal("failed to create profile", err)
	}

	return &p, nil
}

func (r *Repository) GetProfile(ctx context.Context, accountID int) (*Profile, error) {
	query := `
		SELECT id, account_id, uid, network, human_name, username, email, picture, created_at
		FROM social_profiles
		WHERE account_id = $1
	`

	var p Profile
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(
		&p.ID,
		&p.AccountID,
		&p.UID,
		&p.Network,
		&p.HumanName,
		&p.Username,
		&p.Email,
		&p.Picture,
		&p.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundf("profile not found for account %d", accountID)
		}
		return nil, errors.WrapInternal("failed to get profile", err)
	}

	return &p, nil
}

func (r *Repository) SetUsername(ctx context.Context, accountID int, username string) error {
	query := `
		UPDATE social_profiles
		SET username = $1
		WHERE account_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, username, accountID)
	if err != nil {
		return errors.WrapInternal("failed to set username", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.WrapInternal("failed to set username", err)
	}
	if rows == 0 {
		return errors.NotFoundf("profile not found for account %d", accountID)
	}

	return nil
}

// DeleteUnlinkedAccount removes an account that never completed its
// profile creation. The WHERE clause protects linked accounts; deleting
// an already-deleted row is not an error.
func (r *Repository) DeleteUnlinkedAccount(ctx context.Context, accountID int) error {
	query := `
		DELETE FROM social_accounts
		WHERE id = $1 AND user_id IS NULL
	`

	if _, err := r.db.ExecContext(ctx, query, accountID); err != nil {
		return errors.WrapInternal("failed to delete account", err)
	}

	return nil
}

// LinkUser sets the account's user link. The WHERE clause keeps the
// transition monotonic: an already-linked account is never relinked.
func (r *Repository) LinkUser(ctx context.Context, accountID, userID int) error {
	query := `
		UPDATE social_accounts
		SET user_id = $1
		WHERE id = $2 AND user_id IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, userID, accountID)
	if err != nil {
		return errors.WrapInternal("failed to link user", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.WrapInternal("failed to link user", err)
	}
	if rows == 0 {
		return errors.Conflictf("account %d is already linked to a user", accountID)
	}

	return nil
}

func (r *Repository) UpdateExtraData(ctx context.Context, accountID int, extraData string) error {
	query := `
		UPDATE social_accounts
		SET extra_data = $1
		WHERE id = $2
	`

	_, err := r.db.ExecContext(ctx, query, extraData, accountID)
	if err != nil {
		return errors.WrapInternal("failed to update extra data", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a postgres unique violation,
// optionally narrowed to a single constraint name.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !stderrors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
