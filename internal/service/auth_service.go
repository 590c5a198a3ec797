package service

import (
	"context"
	"log/slog"

	"github.com/akashg/potledger/internal/auth"
	"github.com/akashg/potledger/internal/models"
)

// AuthService handles registration and login, issuing session tokens.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
	}
}

// Register creates an account and returns the user with a session token.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*models.User, string, error) {
	user, err := s.authenticator.Register(ctx, email, name, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, "", err
	}

	slog.Info("User registered", "user_id", user.ID)
	return user, token, nil
}

// Login authenticates a user and returns a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, "", err
	}

	slog.Info("User logged in", "user_id", user.ID)
	return user, token, nil
}
