package user

import (
	"context"
	"log/slog"
	"strconv"
)

// Store is the persistence surface the service needs. *Repository
// implements it; tests substitute an in-memory fake.
type Store interface {
	GetByID(ctx context.Context, id int) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, username, email, displayName string, pictureURL *string) (*User, error)
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	logger.Debug("Initializing user service")

	return &Service{
		store:  store,
		logger: logger,
	}
}

func (s *Service) GetByID(ctx context.Context, id int) (*User, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.store.FindByEmail(ctx, email)
}

func (s *Service) Create(ctx context.Context, username, email, displayName string, pictureURL *string) (*User, error) {
	u, err := s.store.Create(ctx, username, email, displayName, pictureURL)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User created", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// FindFreeUsername returns base with the smallest non-negative integer
// suffix that does not collide with an existing username; suffix 0 is
// the bare name. Given existing "test" and "test1" it returns "test2".
func (s *Service) FindFreeUsername(ctx context.Context, base string) (string, error) {
	for i := 0; ; i++ {
		candidate := base
		if i > 0 {
			candidate = base + strconv.Itoa(i)
		}

		exists, err := s.store.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}
