package repository

import (
	"context"
	"time"

	"taskboard/internal/domain"

	"gorm.io/gorm"
)

// RefreshTokenRepository is the server-side ledger of live refresh tokens.
// Records are single-use: rotation deletes the consumed record and inserts
// its replacement.
type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// FindValid returns the record matching both the token hash and its claimed
// owner, and only while it is unexpired. The double constraint keeps a token
// stolen in isolation from being replayed under another identity.
func (r *RefreshTokenRepository) FindValid(ctx context.Context, tokenHash, userID string) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.WithContext(ctx).
		Where("token_hash = ? AND user_id = ? AND expires_at > ?", tokenHash, userID, time.Now().UTC()).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ConsumeByID deletes a record by primary key and reports how many rows went
// away. Two concurrent refreshes of the same token race here: the delete is
// the linearization point, so exactly one caller sees affected == 1.
func (r *RefreshTokenRepository) ConsumeByID(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.RefreshToken{})
	return res.RowsAffected, res.Error
}

// DeleteByHash removes every record with the given hash regardless of owner.
// Logout uses it so an expired or tampered cookie can still be cleared.
func (r *RefreshTokenRepository) DeleteByHash(ctx context.Context, tokenHash string) error {
	return r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&domain.RefreshToken{}).Error
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&domain.RefreshToken{})
	return res.RowsAffected, res.Error
}

func (r *RefreshTokenRepository) CountActiveByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("user_id = ? AND expires_at > ?", userID, time.Now().UTC()).
		Count(&count).Error
	return count, err
}
