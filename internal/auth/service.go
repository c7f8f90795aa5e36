// Package auth handles password-based login and JWT issuance.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lumapix/service/internal/config"
	"github.com/lumapix/service/internal/user"
)

const tokenTTL = 24 * time.Hour

// ErrInvalidCredentials is returned when the username or password is wrong.
// Lookup failures and password mismatches are indistinguishable on purpose.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service contains the business logic for authentication.
type Service struct {
	userSvc *user.Service
	cfg     *config.Config
}

// NewService creates a new auth Service.
func NewService(userSvc *user.Service, cfg *config.Config) *Service {
	return &Service{userSvc: userSvc, cfg: cfg}
}

// Login verifies the credentials and issues a JWT for the user.
func (s *Service) Login(ctx context.Context, username, password string) (string, *user.User, error) {
	u, err := s.userSvc.GetByUsername(ctx, username)
	if err != nil {
		if s.userSvc.IsNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("look up user: %w", err)
	}

	if !s.userSvc.CheckPassword(u, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(u.ID, u.Username)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

// issueToken creates a signed JWT for the given user.
func (s *Service) issueToken(userID, username string) (string, error) {
	claims := jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
