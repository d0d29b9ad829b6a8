// Package auth issues and validates the opaque identity tokens used by the
// authenticated submission endpoints.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"quizhub/internal/domain"
)

// UserStore is the slice of the document store the credential service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, id string) (domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (domain.User, error)
}

// Service registers accounts and exchanges credentials for signed tokens.
type Service struct {
	store    UserStore
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func NewService(store UserStore, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		store:    store,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// Register creates a user with a bcrypt-hashed password. Duplicate usernames
// or emails fail with domain.ErrDuplicateUser.
func (s *Service) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Authenticate verifies the credentials and returns a signed HS256 token
// carrying the user ID.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, domain.User, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.User{}, domain.ErrInvalidCredentials
		}
		return "", domain.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}

	now := s.now()
	claims := jwt.MapClaims{
		"userId": user.ID,
		"iat":    now.Unix(),
		"exp":    now.Add(s.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

// ParseToken validates a token and resolves the user ID it carries.
func (s *Service) ParseToken(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrInvalidCredentials
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrInvalidCredentials
	}
	userID, ok := claims["userId"].(string)
	if !ok || userID == "" {
		return "", domain.ErrInvalidCredentials
	}
	return userID, nil
}

// Profile returns the account behind a resolved user ID.
func (s *Service) Profile(ctx context.Context, userID string) (domain.User, error) {
	return s.store.FindUserByID(ctx, userID)
}
