package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bellamoda/salon-bookings/internal/domain"
	"github.com/bellamoda/salon-bookings/pkg/auth"
	"github.com/bellamoda/salon-bookings/pkg/config"
)

func newTestAuthService() AuthService {
	cfg := &config.Config{
		Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTL: time.Hour},
	}
	return NewAuthService(newMockUserRepo(), &mockEventBus{}, cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, &domain.RegisterRequest{
		Email:    "Ana@Example.com",
		Password: "correct-horse",
		Name:     "Ana",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Email != "ana@example.com" {
		t.Errorf("Email = %q, want lowercased", user.Email)
	}
	if user.Role != domain.RoleUser {
		t.Errorf("Role = %q, want user", user.Role)
	}

	resp, err := svc.Login(ctx, &domain.LoginRequest{Email: "ana@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	claims, err := auth.Parse(resp.AccessToken, "test-secret")
	if err != nil {
		t.Fatalf("token does not parse: %v", err)
	}
	if claims.Sub != user.ID {
		t.Errorf("token sub = %d, want %d", claims.Sub, user.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	req := &domain.RegisterRequest{Email: "ana@example.com", Password: "correct-horse", Name: "Ana"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	_, err := svc.Register(ctx, &domain.RegisterRequest{Email: "ana@example.com", Password: "other-password", Name: "Other"})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("second Register() error = %v, want ErrEmailTaken", err)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email:    "ana@example.com",
		Password: "short",
		Name:     "Ana",
	})
	if err == nil {
		t.Fatal("expected validation error for short password")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, &domain.RegisterRequest{Email: "ana@example.com", Password: "correct-horse", Name: "Ana"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := svc.Login(ctx, &domain.LoginRequest{Email: "ana@example.com", Password: "wrong"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}
