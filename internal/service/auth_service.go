package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"supply-cart/internal/model"
	"supply-cart/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// authService implements AuthService.
type authService struct {
	userRepo      repository.UserRepository
	adminUsername string
	bcryptCost    int
	logger        zerolog.Logger

	// dummyHash is compared against when the user does not exist so that an
	// unknown username costs the same as a wrong password.
	dummyHash []byte
}

// NewAuthService creates a new auth service.
func NewAuthService(userRepo repository.UserRepository, adminUsername string, bcryptCost int, logger zerolog.Logger) (AuthService, error) {
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("supply-cart"), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hashing: %w", err)
	}

	return &authService{
		userRepo:      userRepo,
		adminUsername: adminUsername,
		bcryptCost:    bcryptCost,
		logger:        logger.With().Str("service", "auth").Logger(),
		dummyHash:     dummyHash,
	}, nil
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, model.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, model.NewBackendError("authenticate", err)
	}

	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.logger.Warn().Str("username", username).Msg("login failed")
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn().Str("username", username).Msg("login failed")
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

func (s *authService) CreateUser(ctx context.Context, username, password, name string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, model.NewValidationError("username", "username is required")
	}
	if password == "" {
		return nil, model.NewValidationError("password", "password is required")
	}
	if len(password) > 72 {
		return nil, model.NewValidationError("password", "password must be at most 72 bytes")
	}
	if strings.TrimSpace(name) == "" {
		name = username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, model.NewBackendError("create user", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Name:         name,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrUserExists) {
			return nil, err
		}
		return nil, model.NewBackendError("create user", err)
	}

	s.logger.Info().Str("username", username).Msg("user created")
	return user, nil
}

func (s *authService) IsAdmin(username string) bool {
	return subtle.ConstantTimeCompare([]byte(username), []byte(s.adminUsername)) == 1
}
