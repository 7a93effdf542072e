package repository

import (
	"context"
	"strings"

	"shoestore/internal/domain/model"
	repo "shoestore/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoucherGormRepository struct {
	db *gorm.DB
}

func NewVoucherGormRepository(db *gorm.DB) *VoucherGormRepository {
	return &VoucherGormRepository{db: db}
}

func (r *VoucherGormRepository) List(ctx context.Context) ([]model.Voucher, error) {
	var list []model.Voucher
	if err := r.db.WithContext(ctx).Order("id desc").Find(&list).Error; err != nil {
		return []model.Voucher{}, err
	}
	return list, nil
}

// コードは大文字で保存している
func (r *VoucherGormRepository) FindByCode(ctx context.Context, code string) (model.Voucher, error) {
	var v model.Voucher
	err := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(code)).First(&v).Error
	if err != nil {
		return model.Voucher{}, translateErr(err)
	}
	return v, nil
}

func (r *VoucherGormRepository) FindByCodeForUpdate(ctx context.Context, code string) (model.Voucher, error) {
	var v model.Voucher
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", strings.ToUpper(code)).
		First(&v).Error
	if err != nil {
		return model.Voucher{}, translateErr(err)
	}
	return v, nil
}

func (r *VoucherGormRepository) Create(ctx context.Context, v model.Voucher) (model.Voucher, error) {
	v.Code = strings.ToUpper(v.Code)
	if err := r.db.WithContext(ctx).Create(&v).Error; err != nil {
		return model.Voucher{}, translateErr(err)
	}
	return v, nil
}

func (r *VoucherGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Voucher{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// usage_limit=0は無制限
func (r *VoucherGormRepository) IncrementUsedIfAvailable(ctx context.Context, voucherID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Voucher{}).
		Where("id = ? AND (usage_limit = 0 OR used_count < usage_limit)", voucherID).
		Update("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *VoucherGormRepository) HasRedeemed(ctx context.Context, voucherID, userID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.VoucherRedemption{}).
		Where("voucher_id = ? AND user_id = ?", voucherID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *VoucherGormRepository) RedeemedVoucherIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&model.VoucherRedemption{}).
		Where("user_id = ?", userID).
		Pluck("voucher_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// (voucher_id, user_id)の一意制約で二重使用を防ぐ
func (r *VoucherGormRepository) CreateRedemption(ctx context.Context, rd model.VoucherRedemption) error {
	if err := r.db.WithContext(ctx).Create(&rd).Error; err != nil {
		return translateErr(err)
	}
	return nil
}
