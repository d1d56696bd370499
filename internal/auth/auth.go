// Package auth issues and verifies session tokens for the web UI.
// Passwords are bcrypt-hashed; sessions are signed JWTs carried in an
// HTTP-only cookie.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"networth/internal/core"
	"networth/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid session token")
	ErrSignupDisabled     = errors.New("signup is disabled")
)

type Service struct {
	repo          *storage.Repository
	secret        []byte
	ttl           time.Duration
	signupEnabled bool
}

func NewService(repo *storage.Repository, secret string, ttl time.Duration, signupEnabled bool) *Service {
	return &Service{
		repo:          repo,
		secret:        []byte(secret),
		ttl:           ttl,
		signupEnabled: signupEnabled,
	}
}

// Login verifies the credentials and returns a signed session token. A
// wrong username and a wrong password produce the same error.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, core.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.issueToken(user.ID)
}

// Register creates a user with a bcrypt-hashed password. It honors the
// signup toggle; the admin CLI bypasses it via CreateUser.
func (s *Service) Register(ctx context.Context, username, email, password string) (core.User, error) {
	if !s.signupEnabled {
		return core.User{}, ErrSignupDisabled
	}
	return s.CreateUser(ctx, username, email, password)
}

// CreateUser creates a user regardless of the signup toggle.
func (s *Service) CreateUser(ctx context.Context, username, email, password string) (core.User, error) {
	if username == "" {
		return core.User{}, errors.New("username is required")
	}
	if len(password) < 8 {
		return core.User{}, errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.CreateUser(ctx, core.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
}

// Verify parses the session token and loads its user.
func (s *Service) Verify(ctx context.Context, token string) (core.User, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return core.User{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return core.User{}, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return core.User{}, ErrInvalidToken
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, ErrInvalidToken
	}
	if err != nil {
		return core.User{}, fmt.Errorf("load session user: %w", err)
	}
	return user, nil
}

// TTL is the session lifetime, used for the cookie max-age.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

func (s *Service) issueToken(userID int64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
