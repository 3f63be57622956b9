package account

import (
	"context"
	"log/slog"
	"time"
)

type Service struct {
	repo   *Repository
	logger *slog.Logger
}

func NewService(repo *Repository, logger *slog.Logger) *Service {
	logger.Debug("Initializing account service")

	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) FindByAccessToken(ctx context.Context, accessToken string) (*Account, error) {
	return s.repo.FindByAccessToken(ctx, accessToken)
}

func (s *Service) FindByIdentity(ctx context.Context, network, uid string) (*Account, error) {
	return s.repo.FindByIdentity(ctx, network, uid)
}

func (s *Service) FindByAccountToken(ctx context.Context, accountToken string) (*Account, error) {
	return s.repo.FindByAccountToken(ctx, accountToken)
}

func (s *Service) CreateAccount(ctx context.Context, accessToken string, expiresAt *time.Time) (*Account, error) {
	a, err := s.repo.CreateAccount(ctx, accessToken, expiresAt)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Account created", "account_id", a.ID)
	return a, nil
}

func (s *Service) CreateProfile(ctx context.Context, accountID int, np NewProfile) (*Profile, error) {
	p, err := s.repo.CreateProfile(ctx, accountID, np)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Profile created",
		"account_id", accountID,
		"network", p.Network,
		"uid", p.UID)
	return p, nil
}

func (s *Service) GetProfile(ctx context.Context, accountID int) (*Profile, error) {
	return s.repo.GetProfile(ctx, accountID)
}

func (s *Service) SetUsername(ctx context.Context, accountID int, username string) error {
	return s.repo.SetUsername(ctx, accountID, username)
}

func (s *Service) DeleteUnlinkedAccount(ctx context.Context, accountID int) error {
	if err := s.repo.DeleteUnlinkedAccount(ctx, accountID); err != nil {
		return err
	}

	s.logger.Info("Unlinked account deleted", "account_id", accountID)
	return nil
}

func (s *Service) LinkUser(ctx context.Context, accountID, userID int) error {
	if err := s.repo.LinkUser(ctx, accountID, userID); err != nil {
		return err
	}

	s.logger.Info("Account linked to user", "account_id", accountID, "user_id", userID)
	return nil
}

// SaveExtra persists the account's serialized extension data.
func (s *Service) SaveExtra(ctx context.Context, a *Account) error {
	return s.repo.UpdateExtraData(ctx, a.ID, a.ExtraData)
}
