package auth

import (
	"context"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/pkg/jwt"
)

// UserRepositoryInterface — only the methods the auth service uses
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepositoryInterface — the ledger of live refresh tokens
type RefreshTokenRepositoryInterface interface {
	Create(ctx context.Context, t *domain.RefreshToken) error
	FindValid(ctx context.Context, tokenHash, userID string) (*domain.RefreshToken, error)
	ConsumeByID(ctx context.Context, id string) (int64, error)
	DeleteByHash(ctx context.Context, tokenHash string) error
}

type tokenCodec interface {
	GenerateAccessToken(userID, email string) (string, error)
	GenerateRefreshToken(userID, email string) (string, error)
	ValidateRefreshToken(token string) (*jwt.Claims, error)
	RefreshTTL() time.Duration
}
