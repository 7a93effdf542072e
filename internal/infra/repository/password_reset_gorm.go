package repository

import (
	"context"
	"time"

	"shoestore/internal/domain/model"

	"gorm.io/gorm"
)

type PasswordResetGormRepository struct {
	db *gorm.DB
}

func NewPasswordResetGormRepository(db *gorm.DB) *PasswordResetGormRepository {
	return &PasswordResetGormRepository{db: db}
}

func (r *PasswordResetGormRepository) Create(ctx context.Context, t model.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(&t).Error
}

func (r *PasswordResetGormRepository) FindValidByHash(ctx context.Context, tokenHash string, now time.Time) (model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	err := r.db.WithContext(ctx).
		Where("token_hash = ? AND consumed_at IS NULL AND expires_at > ?", tokenHash, now).
		First(&t).Error
	if err != nil {
		return model.PasswordResetToken{}, translateErr(err)
	}
	return t, nil
}

// 未使用のときだけ使用済みにする
func (r *PasswordResetGormRepository) MarkConsumed(ctx context.Context, id int64, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.PasswordResetToken{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", now)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PasswordResetGormRepository) DeleteStale(ctx context.Context, now time.Time, consumedBefore time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ? OR (consumed_at IS NOT NULL AND consumed_at < ?)", now, consumedBefore).
		Delete(&model.PasswordResetToken{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
