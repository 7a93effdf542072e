package repository

import (
	"context"

	"shoestore/internal/domain/model"
	repo "shoestore/internal/repository"

	"gorm.io/gorm"
)

// 配送先住所の永続化
type addressGormRepository struct {
	db *gorm.DB
}

func NewAddressGormRepository(db *gorm.DB) repo.AddressRepository {
	return &addressGormRepository{db: db}
}

// 本人の住所に絞ったクエリ
func ownedAddress(db *gorm.DB, addressID, userID int64) *gorm.DB {
	return db.Model(&model.Address{}).Where("id = ? AND user_id = ?", addressID, userID)
}

func (r *addressGormRepository) Create(ctx context.Context, address model.Address) (model.Address, error) {
	if err := r.db.WithContext(ctx).Create(&address).Error; err != nil {
		return model.Address{}, translateErr(err)
	}
	return address, nil
}

// default が先頭、残りは登録順
func (r *addressGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	list := make([]model.Address, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *addressGormRepository) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	var found model.Address
	if err := r.db.WithContext(ctx).First(&found, addressID).Error; err != nil {
		return model.Address{}, translateErr(err)
	}
	return found, nil
}

// 宛先項目のみ書き換える（user_id / is_default は触らない）
func (r *addressGormRepository) Update(ctx context.Context, address model.Address) error {
	res := r.db.WithContext(ctx).
		Model(&model.Address{ID: address.ID}).
		Select("recipient_name", "phone", "line", "ward", "district", "city", "updated_at").
		Updates(address)
	return affectedOne(res)
}

func (r *addressGormRepository) Delete(ctx context.Context, addressID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Address{}, addressID)
	return affectedOne(res)
}

func (r *addressGormRepository) IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error) {
	var n int64
	if err := ownedAddress(r.db.WithContext(ctx), addressID, userID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// 旧defaultの解除と新defaultの設定を同一トランザクションで行う
func (r *addressGormRepository) SetDefault(ctx context.Context, userID, addressID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := ownedAddress(tx, addressID, userID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return repo.ErrNotFound
		}
		if err := tx.Model(&model.Address{}).
			Where("user_id = ? AND id <> ? AND is_default", userID, addressID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return affectedOne(ownedAddress(tx, addressID, userID).Update("is_default", true))
	})
}

// 0件更新は対象なしとみなす
func affectedOne(res *gorm.DB) error {
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
