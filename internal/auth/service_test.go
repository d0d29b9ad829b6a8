package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizhub/internal/auth"
	"quizhub/internal/domain"
	"quizhub/internal/infra/memory"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	service := auth.NewService(memory.NewStore(), "test-secret", time.Hour)

	user, err := service.Register(ctx, "alice", "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" || user.PasswordHash == "s3cret" {
		t.Fatalf("expected generated ID and hashed password, got %+v", user)
	}

	token, authed, err := service.Authenticate(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, authed.ID)
	}

	userID, err := service.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if userID != user.ID {
		t.Fatalf("token resolved to %s, want %s", userID, user.ID)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	service := auth.NewService(memory.NewStore(), "test-secret", time.Hour)

	if _, err := service.Register(ctx, "alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := service.Register(ctx, "alice2", "alice@example.com", "pw"); !errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("expected duplicate email error, got %v", err)
	}
	if _, err := service.Register(ctx, "alice", "other@example.com", "pw"); !errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("expected duplicate username error, got %v", err)
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	service := auth.NewService(memory.NewStore(), "test-secret", time.Hour)

	if _, _, err := service.Authenticate(ctx, "nobody@example.com", "pw"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}

	if _, err := service.Register(ctx, "alice", "alice@example.com", "right"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := service.Authenticate(ctx, "alice@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for wrong password, got %v", err)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	service := auth.NewService(memory.NewStore(), "test-secret", time.Hour)

	if _, err := service.ParseToken("not-a-token"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	other := auth.NewService(memory.NewStore(), "other-secret", time.Hour)
	ctx := context.Background()
	if _, err := other.Register(ctx, "bob", "bob@example.com", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	token, _, err := other.Authenticate(ctx, "bob@example.com", "pw")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if _, err := service.ParseToken(token); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected token signed with other secret to be rejected, got %v", err)
	}
}
