package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinichq/clinic-api/pkg/auth"
	apperrors "github.com/clinichq/clinic-api/pkg/errors"
	"github.com/clinichq/clinic-api/pkg/logger"
	"github.com/clinichq/clinic-api/pkg/security"

	"github.com/clinichq/clinic-api/internal/email"
	"github.com/clinichq/clinic-api/internal/model"
	"github.com/clinichq/clinic-api/internal/repository"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
	resetTokenTTL    = 1 * time.Hour
)

type Service struct {
	repo       repository.UserRepository
	tokens     repository.TokenRepository
	jwtService auth.JWTService
	email      email.Service
	logger     *logger.Logger
}

func NewService(repo repository.UserRepository, tokens repository.TokenRepository,
	jwtService auth.JWTService, emailService email.Service, log *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		tokens:     tokens,
		jwtService: jwtService,
		email:      emailService,
		logger:     log,
	}
}

// Register creates a user with the requested role. Role assignment is gated
// at the route layer, so by the time we get here the caller is an admin.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if !req.Role.Valid() {
		return nil, apperrors.Validation("invalid role", nil)
	}
	if err := security.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.Conflict("email already registered", nil)
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         req.Role,
		Status:       model.UserStatusActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.email != nil {
		if err := s.email.SendWelcome(user.Email, user.Name); err != nil {
			s.logger.Warn("failed to send welcome email", "user_id", user.ID.String(), "error", err.Error())
		}
	}
	return user, nil
}

// Login checks credentials and issues a token pair. Five consecutive bad
// passwords lock the account for fifteen minutes.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid credentials", nil)
	}

	if user.Status == model.UserStatusLocked {
		if time.Since(user.LastLoginAttempt) < lockoutDuration {
			return nil, apperrors.Unauthorized("account locked, try again later", nil)
		}
		user.Status = model.UserStatusActive
		user.LoginAttempts = 0
	}

	if err := security.CheckPassword(req.Password, user.PasswordHash); err != nil {
		user.LoginAttempts++
		user.LastLoginAttempt = time.Now()
		if user.LoginAttempts >= maxLoginAttempts {
			user.Status = model.UserStatusLocked
			s.logger.Warn("account locked after repeated failures", "user_id", user.ID.String())
		}
		if err := s.repo.Update(ctx, user); err != nil {
			s.logger.Error(err, "failed to record login attempt", "user_id", user.ID.String())
		}
		return nil, apperrors.Unauthorized("invalid credentials", nil)
	}

	now := time.Now()
	user.LoginAttempts = 0
	user.LastLoginAttempt = now
	user.LastLoginAt = &now
	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Error(err, "failed to record login", "user_id", user.ID.String())
	}

	return s.issueTokens(user)
}

// Refresh exchanges a valid, unrevoked refresh token for a fresh pair. The
// old refresh token is revoked so it cannot be replayed.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token", err)
	}

	revoked, err := s.tokens.IsRevoked(ctx, refreshToken)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if revoked {
		return nil, apperrors.Unauthorized("refresh token revoked", nil)
	}

	user, err := s.repo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token", nil)
	}

	if err := s.tokens.RevokeToken(ctx, refreshToken, resetTokenTTL); err != nil {
		s.logger.Warn("failed to revoke rotated refresh token", "user_id", user.ID.String())
	}
	return s.issueTokens(user)
}

// Logout revokes both tokens for the remainder of their lifetime.
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string, tokenTTL time.Duration) error {
	if err := s.tokens.RevokeToken(ctx, accessToken, tokenTTL); err != nil {
		return apperrors.Internal(err)
	}
	if refreshToken != "" {
		if err := s.tokens.RevokeToken(ctx, refreshToken, tokenTTL); err != nil {
			return apperrors.Internal(err)
		}
	}
	return nil
}

// ForgotPassword always succeeds from the caller's point of view so the
// endpoint cannot be used to probe which emails exist.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.repo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil
	}

	token, err := randomToken()
	if err != nil {
		return apperrors.Internal(err)
	}
	if err := s.tokens.StoreResetToken(ctx, user.ID, token, resetTokenTTL); err != nil {
		return apperrors.Internal(err)
	}

	if err := s.email.SendPasswordReset(user.Email, token); err != nil {
		s.logger.Error(err, "failed to send reset email", "user_id", user.ID.String())
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := security.ValidatePassword(newPassword); err != nil {
		return apperrors.Validation(err.Error(), err)
	}

	userID, err := s.tokens.ValidateResetToken(ctx, token)
	if err != nil {
		return apperrors.Unauthorized("invalid or expired reset token", err)
	}

	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}
	user.PasswordHash = hash
	user.LoginAttempts = 0
	user.Status = model.UserStatusActive
	user.UpdatedAt = time.Now()
	return s.repo.Update(ctx, user)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) UsersInRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	if !role.Valid() {
		return nil, apperrors.Validation("invalid role", nil)
	}
	return s.repo.ListByRole(ctx, role)
}

func (s *Service) AssignRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	if !role.Valid() {
		return apperrors.Validation("invalid role", nil)
	}
	return s.repo.UpdateRole(ctx, id, role)
}

func (s *Service) issueTokens(user *model.User) (*model.TokenResponse, error) {
	access, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to generate access token: %w", err))
	}
	refresh, err := s.jwtService.GenerateRefreshToken(user)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to generate refresh token: %w", err))
	}
	return &model.TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
