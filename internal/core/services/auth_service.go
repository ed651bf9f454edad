package services

import (
	"context"

	"coopvote/internal/adapters/persistence/models"
	"coopvote/internal/adapters/persistence/repositories"
	"coopvote/internal/config"
	"coopvote/internal/core/domain"
	"coopvote/internal/pkg/jwt"
	"coopvote/internal/pkg/password"
)

// AuthService handles election-administrator authentication.
type AuthService struct {
	userRepo repositories.UserRepository
	cfg      *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// LoginResult carries the minted token and the authenticated user.
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

// Login verifies credentials and mints an access token.
func (s *AuthService) Login(ctx context.Context, username, plainPassword string) (*LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrForbidden
	}
	if !password.Verify(plainPassword, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := jwt.GenerateAccessToken(user.ID, user.Username, user.Role, s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins)
	if err != nil {
		return nil, err
	}

	return &LoginResult{AccessToken: token, User: user}, nil
}
