package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/careerhub/internal/auth/domain"
	"github.com/aussiebroadwan/careerhub/internal/auth/store"
	"github.com/aussiebroadwan/careerhub/pkg/idx"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	maxEmailLength    = 254
)

type UserService struct {
	Store     store.Store
	Passwords PasswordHasher
	Observer  Observer
	Now       func() time.Time
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, invalid("user not found")
	}
	if err != nil {
		return domain.User{}, classify(fmt.Errorf("get user: %w", err))
	}
	return u, nil
}

// Register creates an account. Only self-registrable roles are accepted.
func (s *UserService) Register(ctx context.Context, email, password string, role domain.Role) (domain.User, error) {
	email = domain.NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return domain.User{}, err
	}
	if n := utf8.RuneCountInString(password); n < MinPasswordLength || n > MaxPasswordLength {
		return domain.User{}, invalid(fmt.Sprintf("password must be %d to %d characters", MinPasswordLength, MaxPasswordLength))
	}
	if role == "" {
		role = domain.RoleStudent
	}
	if _, err := domain.ParseRole(string(role)); err != nil || !role.SelfRegistrable() {
		return domain.User{}, invalid("role cannot be self-registered")
	}

	hash, err := s.Passwords.Hash(password)
	if err != nil {
		return domain.User{}, classify(fmt.Errorf("hash password: %w", err))
	}

	now := s.now()
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, classify(fmt.Errorf("create user: %w", err))
	}

	observe(ctx, s.Observer, Event{
		Name:   EventRegistered,
		UserID: u.ID,
		Attrs:  []slog.Attr{slog.String("role", role.String())},
	})
	return u, nil
}

func validateEmail(email string) error {
	if email == "" || len(email) > maxEmailLength {
		return invalid("a valid email address is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("a valid email address is required")
	}
	return nil
}
