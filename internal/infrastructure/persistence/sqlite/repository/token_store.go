package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"reviewd/internal/domain/user"
	"reviewd/internal/errs"
	"reviewd/internal/infrastructure/persistence/sqlite/model"
	"reviewd/internal/ports"
)

// TokenStore persists revoked JWTs. Re-blacklisting the same token is a
// no-op, not an error.
type TokenStore struct {
	db *gorm.DB
}

var _ ports.TokenStore = (*TokenStore)(nil)

func NewTokenStore(db *gorm.DB) *TokenStore {
	return &TokenStore{db: db}
}

func (s *TokenStore) Add(ctx context.Context, t user.BlacklistedToken) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	trimmed := strings.TrimSpace(t.Token)
	if trimmed == "" {
		return errors.New("token is required")
	}

	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	row := model.BlacklistToken{
		Token:     trimmed,
		Expire:    formatTime(t.Expire),
		CreatedAt: formatTime(createdAt),
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert blacklist token")
	}
	return nil
}

func (s *TokenStore) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	if ctx == nil {
		return false, errors.New("context is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&model.BlacklistToken{}).
		Where("token = ?", strings.TrimSpace(token)).
		Count(&count).Error; err != nil {
		return false, errs.Wrap(err, "query blacklist token")
	}
	return count > 0, nil
}

func (s *TokenStore) PurgeExpired(ctx context.Context) (int64, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}

	// RFC3339 strings in UTC compare lexicographically in timestamp order.
	result := s.db.WithContext(ctx).
		Where("expire < ?", formatTime(time.Now().UTC())).
		Delete(&model.BlacklistToken{})
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "purge expired tokens")
	}
	return result.RowsAffected, nil
}
