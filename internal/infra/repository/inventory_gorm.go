package repository

import (
	"context"

	"shoestore/internal/domain/model"
	repo "shoestore/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

func (r *InventoryGormRepository) GetStockForUpdate(ctx context.Context, productID, sizeID int64) (int64, error) {
	var ps model.ProductSize
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND size_id = ?", productID, sizeID).
		First(&ps).Error
	if isNotFound(err) {
		return 0, repo.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return ps.Stock, nil
}

// 在庫の現在値を設定
func (r *InventoryGormRepository) SetStock(ctx context.Context, productID, sizeID int64, newStock int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.ProductSize{}).
		Where("product_id = ? AND size_id = ?", productID, sizeID).
		Update("stock", newStock)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 在庫が足りるときだけ減らす（1文で判定と減算）
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, productID, sizeID int64, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ProductSize{}).
		Where("product_id = ? AND size_id = ? AND stock >= ?", productID, sizeID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 在庫戻し（キャンセル）
func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, productID, sizeID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.ProductSize{}).
		Where("product_id = ? AND size_id = ?", productID, sizeID).
		Update("stock", gorm.Expr("stock + ?", qty))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 調整履歴作成
func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return err
	}
	return nil
}
