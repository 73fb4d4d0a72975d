package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/voicedesk/internal/auth"
	"github.com/spec-kit/voicedesk/internal/config"
	"github.com/spec-kit/voicedesk/internal/domain"
	"github.com/spec-kit/voicedesk/internal/repository"
	apperrors "github.com/spec-kit/voicedesk/pkg/util"
)

// AuthService handles platform-admin registration and login.
type AuthService struct {
	admins     repository.AdminRepository
	tokens     *auth.TokenManager
	bcryptCost int
}

// NewAuthService constructs the service.
func NewAuthService(admins repository.AdminRepository, tokens *auth.TokenManager, cfg config.AuthConfig) *AuthService {
	return &AuthService{admins: admins, tokens: tokens, bcryptCost: cfg.BcryptCost}
}

// RegisterAdmin creates a platform administrator and issues a token.
func (s *AuthService) RegisterAdmin(ctx context.Context, name, email, password string) (*domain.Admin, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(password) < 8 {
		return nil, "", time.Time{}, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	existing, err := s.admins.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}
	if existing != nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	admin := &domain.Admin{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Status:       domain.AdminStatusActive,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, "", time.Time{}, err
	}

	token, expiresAt, err := s.tokens.GenerateToken(admin.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return admin, token, expiresAt, nil
}

// LoginAdmin authenticates an administrator and issues a token.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (*domain.Admin, string, time.Time, error) {
	admin, err := s.admins.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if admin.Status != domain.AdminStatusActive {
		return nil, "", time.Time{}, apperrors.NewForbidden("admin account suspended")
	}
	if err := auth.ComparePassword(admin.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(admin.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return admin, token, expiresAt, nil
}
