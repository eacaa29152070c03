package user

import (
	"context"
	"errors"
	"fmt"
)

// Store persists accounts. Repository is the production implementation.
type Store interface {
	Create(ctx context.Context, email string, name *string, passwordHash string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// Service contains business logic for user accounts.
type Service struct {
	store Store
}

// NewService creates a new user Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create registers a new account.
func (s *Service) Create(ctx context.Context, email string, name *string, passwordHash string) (*User, error) {
	u, err := s.store.Create(ctx, email, name, passwordHash)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetByID returns the account with the given id.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return s.store.GetByID(ctx, id)
}
