// Package auth handles email/password sign-up, login and token issuance.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoCredentials is returned when no account exists for an email.
var ErrNoCredentials = errors.New("no credentials for email")

// credentials is the internal representation of a stored login.
type credentials struct {
	UserID       string
	PasswordHash string
}

// Repository reads password hashes.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new auth Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetCredentials returns the user id and password hash for email.
func (r *Repository) GetCredentials(ctx context.Context, email string) (*credentials, error) {
	c := &credentials{}
	err := r.db.QueryRow(ctx,
		`SELECT id, password_hash FROM users WHERE email = $1`,
		email,
	).Scan(&c.UserID, &c.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get credentials: %w", err)
	}
	return c, nil
}
