package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/clinichq/clinic-api/internal/repository"
)

const (
	revokedPrefix = "auth:revoked:"
	resetPrefix   = "auth:reset:"
)

type tokenRepository struct {
	client *goredis.Client
}

func NewTokenRepository(url string) (repository.TokenRepository, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &tokenRepository{client: client}, nil
}

func (r *tokenRepository) RevokeToken(ctx context.Context, token string, expiry time.Duration) error {
	if err := r.client.Set(ctx, revokedPrefix+token, "1", expiry).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *tokenRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := r.client.Get(ctx, revokedPrefix+token).Err()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return true, nil
}

func (r *tokenRepository) StoreResetToken(ctx context.Context, userID uuid.UUID, token string, expiry time.Duration) error {
	if err := r.client.Set(ctx, resetPrefix+token, userID.String(), expiry).Err(); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

func (r *tokenRepository) ValidateResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := r.client.Get(ctx, resetPrefix+token).Result()
	if errors.Is(err, goredis.Nil) {
		return uuid.Nil, fmt.Errorf("invalid or expired reset token")
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to validate reset token: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed reset token payload: %w", err)
	}

	// single use
	r.client.Del(ctx, resetPrefix+token)

	return userID, nil
}
