// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth handles admin credentials: password hashing, first-time
// setup, login and account changes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"codeberg.org/nodehub/nodehub/internal/models"
	"codeberg.org/nodehub/nodehub/internal/repository"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrSetupComplete      = errors.New("setup has already been completed")
	ErrInvalidUsername    = errors.New("username must be 3 to 64 characters without spaces")
)

// dummyHash is verified for unknown users so login timing does not reveal
// which usernames exist.
var dummyHash, _ = HashPassword("dummy-password-for-timing")

type Service struct {
	repo              *repository.Repository
	passwordValidator *PasswordValidator
}

func NewService(repo *repository.Repository) *Service {
	return &Service{
		repo:              repo,
		passwordValidator: DefaultPasswordValidator(),
	}
}

// PasswordValidator returns the password validator for use in handlers.
func (s *Service) PasswordValidator() *PasswordValidator {
	return s.passwordValidator
}

// IsFirstTimeSetup reports whether no admin account exists yet.
func (s *Service) IsFirstTimeSetup(ctx context.Context) (bool, error) {
	count, err := s.repo.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	return count == 0, nil
}

// Setup creates the first admin account. Once any user exists it fails
// with ErrSetupComplete.
func (s *Service) Setup(ctx context.Context, username, password string) (*models.User, error) {
	var user *models.User
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		count, err := tx.CountUsers(ctx)
		if err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		if count > 0 {
			return ErrSetupComplete
		}
		user, err = createUser(ctx, tx, s.passwordValidator, username, password)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrSetupComplete) {
			slog.Warn("setup_rejected", "username", username, "reason", "already_complete")
		}
		return nil, err
	}

	slog.Info("setup_complete", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// CreateUser adds another admin account.
func (s *Service) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	user, err := createUser(ctx, s.repo, s.passwordValidator, username, password)
	if err != nil {
		return nil, err
	}
	slog.Info("user_created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func createUser(ctx context.Context, repo *repository.Repository, v *PasswordValidator, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := v.Validate(password, username); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := repo.CreateUser(ctx, username, hash)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login authenticates a user by username and password.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = VerifyPassword(password, dummyHash)
			slog.Warn("login_failed", "username", username, "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		slog.Warn("login_failed", "username", username, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	slog.Info("login_success", "user_id", user.ID, "username", username)
	return user, nil
}

// ChangePassword replaces a user's password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if !VerifyPassword(currentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	if err := s.passwordValidator.Validate(newPassword, user.Username); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.UpdateUserPassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password_changed", "user_id", userID)
	return nil
}

// ChangeUsername renames a user.
func (s *Service) ChangeUsername(ctx context.Context, userID int64, newUsername string) error {
	newUsername = strings.TrimSpace(newUsername)
	if err := validateUsername(newUsername); err != nil {
		return err
	}

	if err := s.repo.UpdateUsername(ctx, userID, newUsername); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return ErrUserExists
		case errors.Is(err, repository.ErrNotFound):
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update username: %w", err)
	}

	slog.Info("username_changed", "user_id", userID, "username", newUsername)
	return nil
}

func (s *Service) getUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func validateUsername(username string) error {
	if len(username) < 3 || len(username) > 64 || strings.ContainsAny(username, " \t\r\n") {
		return ErrInvalidUsername
	}
	return nil
}
