// Package auth implements registration and login.
package auth

import (
	"context"
	"regexp"
	"strings"

	"votebox/internal/apperr"
	"votebox/internal/models"
	"votebox/internal/store"
	"votebox/internal/token"
	"votebox/internal/utils"

	"github.com/sirupsen/logrus"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

type Service struct {
	users  store.UserStore
	tokens *token.Service
}

func NewService(users store.UserStore, tokens *token.Service) *Service {
	return &Service{users: users, tokens: tokens}
}

func validateUsername(username string) error {
	if len(username) < 3 || len(username) > 20 {
		return apperr.E(apperr.KindValidation, "Username must be between 3 and 20 characters")
	}
	if !usernamePattern.MatchString(username) {
		return apperr.E(apperr.KindValidation, "Username can only contain letters, numbers, and underscores")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return apperr.E(apperr.KindValidation, "Password must be at least 8 characters")
	}
	return nil
}

// Register creates a user and returns a session token. The username check
// includes soft-deleted rows: a deleted username stays reserved forever. The
// user literally named "admin" (case-insensitive) gets the admin role; there
// is no other admin-provisioning path.
func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	if err := validateUsername(username); err != nil {
		return "", err
	}
	if err := validatePassword(password); err != nil {
		return "", err
	}

	_, err := s.users.ByUsernameAnyState(ctx, username)
	if err == nil {
		return "", apperr.E(apperr.KindConflict, "User with that username already exists")
	}
	if apperr.KindOf(err) != apperr.KindNotFound {
		return "", err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return "", apperr.Wrap(apperr.KindStoreUnavailable, "hashing password", err)
	}

	role := models.RoleUser
	if strings.ToLower(username) == "admin" {
		role = models.RoleAdmin
	}

	user := models.User{
		Username: username,
		Password: hash,
		Role:     role,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": role}).Info("user registered")
	return s.tokens.Issue(user.ID, user.Role)
}

// Login checks credentials and returns a session token. Unknown usernames
// and wrong passwords produce the same error so usernames can't be
// enumerated.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	if err := validateUsername(username); err != nil {
		return "", err
	}
	if err := validatePassword(password); err != nil {
		return "", err
	}

	user, err := s.users.ActiveByUsername(ctx, username)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return "", apperr.E(apperr.KindNotFound, "Username or password not found")
		}
		return "", err
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return "", apperr.E(apperr.KindNotFound, "Username or password not found")
	}

	return s.tokens.Issue(user.ID, user.Role)
}
