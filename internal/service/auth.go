package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/password"
	"storefront/internal/repository"
	"storefront/internal/token"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type AuthService interface {
	Register(name, email, plaintext string) (*models.User, string, error)
	Login(email, plaintext string) (*models.User, string, error)
	GetProfile(userID int64) (*models.User, error)
	UpdateProfile(userID int64, name, email string) (*models.User, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *token.Service
	logger *zap.Logger
}

func NewAuthService(users repository.UserRepository, tokens *token.Service, logger *zap.Logger) AuthService {
	return &authService{users: users, tokens: tokens, logger: logger}
}

// Register creates a new user with the default role and returns it together
// with a freshly issued session token.
func (s *authService) Register(name, email, plaintext string) (*models.User, string, error) {
	_, err := s.users.GetUserByEmail(email)
	if err == nil {
		return nil, "", ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("Failed to check existing user", zap.Error(err))
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}

	digest, err := password.Hash(plaintext)
	if err != nil {
		if errors.Is(err, password.ErrEmptyPassword) {
			return nil, "", ErrInvalidCredentials
		}
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: digest,
		Role:         models.RoleUser,
	}
	if err := s.users.CreateUser(user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	signed, err := s.tokens.Issue(models.Principal{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		s.logger.Error("Failed to issue token", zap.Error(err))
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User registered", zap.Int64("id", user.ID))
	return user, signed, nil
}

// Login verifies the credentials and issues a session token. An unknown
// email, a wrong password and a corrupt stored digest are indistinguishable
// to the caller.
func (s *authService) Login(email, plaintext string) (*models.User, string, error) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		s.logger.Error("Failed to get user by email", zap.Error(err))
		return nil, "", fmt.Errorf("failed to retrieve user: %w", err)
	}

	ok, err := password.Verify(plaintext, user.PasswordHash)
	if err != nil {
		// Corrupt stored digest. Reported as invalid credentials so the
		// response does not reveal the state of the stored record.
		s.logger.Error("Stored password digest is malformed", zap.Int64("id", user.ID), zap.Error(err))
		return nil, "", ErrInvalidCredentials
	}
	if !ok {
		return nil, "", ErrInvalidCredentials
	}

	signed, err := s.tokens.Issue(models.Principal{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		s.logger.Error("Failed to issue token", zap.Error(err))
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User logged in", zap.Int64("id", user.ID))
	return user, signed, nil
}

func (s *authService) GetProfile(userID int64) (*models.User, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

func (s *authService) UpdateProfile(userID int64, name, email string) (*models.User, error) {
	if err := s.users.UpdateProfile(userID, name, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.GetProfile(userID)
}
