package repository

import (
	"context"

	"shoestore/internal/domain/model"
	repo "shoestore/internal/repository"

	"gorm.io/gorm"
)

type paymentMethodGormRepository struct {
	db *gorm.DB
}

// DI
func NewPaymentMethodGormRepository(db *gorm.DB) repo.PaymentMethodRepository {
	return &paymentMethodGormRepository{db: db}
}

func (r *paymentMethodGormRepository) Create(ctx context.Context, pm model.PaymentMethod) (model.PaymentMethod, error) {
	if err := r.db.WithContext(ctx).Create(&pm).Error; err != nil {
		return model.PaymentMethod{}, err
	}
	return pm, nil
}

func (r *paymentMethodGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.PaymentMethod, error) {
	var list []model.PaymentMethod
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *paymentMethodGormRepository) FindByID(ctx context.Context, id int64) (model.PaymentMethod, error) {
	var pm model.PaymentMethod
	if err := r.db.WithContext(ctx).First(&pm, id).Error; err != nil {
		return model.PaymentMethod{}, translateErr(err)
	}
	return pm, nil
}

func (r *paymentMethodGormRepository) Update(ctx context.Context, pm model.PaymentMethod) error {
	result := r.db.WithContext(ctx).
		Model(&model.PaymentMethod{}).
		Where("id = ?", pm.ID).
		Select("type", "brand", "holder_name", "last4", "updated_at").
		Updates(pm)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *paymentMethodGormRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.PaymentMethod{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *paymentMethodGormRepository) IsOwnedByUser(ctx context.Context, id, userID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.PaymentMethod{}).
		Where("id = ? AND user_id = ?", id, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count == 1, nil
}

// デフォルトを切り替える
func (r *paymentMethodGormRepository) SetDefault(ctx context.Context, userID, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.PaymentMethod{}).
			Where("user_id = ? AND is_default = TRUE", userID).
			Update("is_default", false).Error; err != nil {
			return err
		}

		result := tx.Model(&model.PaymentMethod{}).
			Where("id = ? AND user_id = ?", id, userID).
			Update("is_default", true)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}
