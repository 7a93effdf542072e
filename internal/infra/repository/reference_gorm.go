package repository

import (
	"context"

	"shoestore/internal/domain/model"

	"gorm.io/gorm"
)

type ReferenceGormRepository struct {
	db *gorm.DB
}

func NewReferenceGormRepository(db *gorm.DB) *ReferenceGormRepository {
	return &ReferenceGormRepository{db: db}
}

func (r *ReferenceGormRepository) ListSizes(ctx context.Context) ([]model.Size, error) {
	var sizes []model.Size
	if err := r.db.WithContext(ctx).Order("id asc").Find(&sizes).Error; err != nil {
		return []model.Size{}, err
	}
	return sizes, nil
}

func (r *ReferenceGormRepository) ExistingSizeIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	var found []int64
	if err := r.db.WithContext(ctx).
		Model(&model.Size{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

func (r *ReferenceGormRepository) FindSizesByIDs(ctx context.Context, ids []int64) ([]model.Size, error) {
	if len(ids) == 0 {
		return []model.Size{}, nil
	}
	var sizes []model.Size
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&sizes).Error; err != nil {
		return []model.Size{}, err
	}
	return sizes, nil
}

func (r *ReferenceGormRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	if err := r.db.WithContext(ctx).Order("id asc").Find(&cats).Error; err != nil {
		return []model.Category{}, err
	}
	return cats, nil
}

func (r *ReferenceGormRepository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
