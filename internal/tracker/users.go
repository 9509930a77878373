package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"budgettracker/internal/auth"
	"budgettracker/internal/store"
	"budgettracker/models"

	"github.com/google/uuid"
)

type SignupInput struct {
	Email    string
	Password string
	FullName string
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email", "email is invalid")
	}
	return nil
}

func hashPassword(password string) ([]byte, error) {
	hash, err := auth.HashPassword(password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		return nil, invalid("password", fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength))
	}
	return hash, err
}

// Signup creates a user. A taken email yields ErrEmailTaken.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	email := NormalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	// pre-check; the unique index still guards the race below
	if _, err := s.store.UserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	u := &models.User{Email: email, FullName: strings.TrimSpace(in.FullName), HashedPassword: hash}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login checks credentials. Unknown email and wrong password both yield
// ErrInvalidCredentials after a full bcrypt comparison.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.store.UserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			auth.CheckPassword(nil, password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.CheckPassword(u.HashedPassword, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) User(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.store.UserByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "User")
	}
	return u, nil
}

// UserByEmail is used by operator tools.
func (s *Service) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.store.UserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, mapNotFound(err, "User")
	}
	return u, nil
}

// ResetPassword replaces the password of the user with the given email.
func (s *Service) ResetPassword(ctx context.Context, email, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	if err := s.store.SetPassword(ctx, NormalizeEmail(email), hash); err != nil {
		return mapNotFound(err, "User")
	}
	return nil
}
