package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/dropshare/service/internal/user"
)

const minPasswordLen = 8

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidEmail is returned when the email cannot be parsed.
var ErrInvalidEmail = errors.New("invalid email address")

// ErrWeakPassword is returned when the password is too short.
var ErrWeakPassword = errors.New("password must be at least 8 characters")

// ErrEmailTaken is returned when signing up with a registered email.
var ErrEmailTaken = errors.New("email already registered")

// CredentialStore looks up stored password hashes.
type CredentialStore interface {
	GetCredentials(ctx context.Context, email string) (*credentials, error)
}

// UserStore creates and reads user accounts.
type UserStore interface {
	Create(ctx context.Context, email string, name *string, passwordHash string) (*user.User, error)
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// Session is a signed token together with the user it was issued for.
type Session struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// Service contains the business logic for email/password authentication.
type Service struct {
	creds  CredentialStore
	users  UserStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a new auth Service.
func NewService(creds CredentialStore, users UserStore, jwtSecret string, ttl time.Duration) *Service {
	return &Service{creds: creds, users: users, secret: []byte(jwtSecret), ttl: ttl, now: time.Now}
}

// Signup creates an account and issues a token for it.
func (s *Service) Signup(ctx context.Context, email, password string, name *string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		name = &trimmed
		if trimmed == "" {
			name = nil
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, email, name, string(hash))
	if errors.Is(err, user.ErrAlreadyExists) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.issueToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, User: u}, nil
}

// Login checks the password and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	c, err := s.creds.GetCredentials(ctx, email)
	if errors.Is(err, ErrNoCredentials) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.GetByID(ctx, c.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	token, err := s.issueToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, User: u}, nil
}

// issueToken creates a signed JWT for the given user.
func (s *Service) issueToken(userID, email string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Name != "" {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}
