package service

import (
	"context"
	"fmt"

	"github.com/alexedwards/argon2id"

	"github.com/bellamoda/salon-bookings/internal/domain"
	"github.com/bellamoda/salon-bookings/internal/repository"
	"github.com/bellamoda/salon-bookings/pkg/auth"
	"github.com/bellamoda/salon-bookings/pkg/config"
	"github.com/bellamoda/salon-bookings/pkg/events"
	"github.com/bellamoda/salon-bookings/pkg/logger"
)

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UpdateUserRole(ctx context.Context, id int64, role string) error
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type authService struct {
	users    repository.UserRepository
	eventBus events.Publisher
	config   *config.Config
}

func NewAuthService(users repository.UserRepository, eventBus events.Publisher, cfg *config.Config) AuthService {
	return &authService{
		users:    users,
		eventBus: eventBus,
		config:   cfg,
	}
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// The unique index on email is the real guard; a concurrent duplicate
	// registration surfaces as ErrEmailTaken from the repository.
	user, err := s.users.Create(ctx, req.Email, passwordHash, req.Name, req.Phone, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	if err := s.eventBus.Publish(ctx, events.UserRegistered, events.UserRegisteredEvent{
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish user registered event", "error", err, "user_id", user.ID)
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	req.Normalize()

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	match, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := auth.NewAccessToken(user.ID, user.Email, user.Role, s.config.Auth.JWTSecret, s.config.Auth.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to mint access token: %w", err)
	}

	return &domain.LoginResponse{AccessToken: token, User: user}, nil
}

func (s *authService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *authService) UpdateUserRole(ctx context.Context, id int64, role string) error {
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return fmt.Errorf("unknown role %q", role)
	}
	return s.users.UpdateRole(ctx, id, role)
}

func (s *authService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return s.users.List(ctx, limit, offset)
}
