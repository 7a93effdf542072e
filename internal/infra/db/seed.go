package db

import (
	"gorm.io/gorm"

	"shoestore/internal/domain/model"
)

// 35〜45（0.5刻み）
var defaultSizes = []string{
	"35", "35.5", "36", "36.5", "37", "37.5", "38", "38.5", "39", "39.5",
	"40", "40.5", "41", "41.5", "42", "42.5", "43", "43.5", "44", "44.5", "45",
}

var defaultCategories = []string{"Sneakers", "Running", "Boots", "Sandals", "Formal"}

// Seed は参照データが空のときだけ入れる
func Seed(gdb *gorm.DB) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Size{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			rows := make([]model.Size, 0, len(defaultSizes))
			for _, v := range defaultSizes {
				rows = append(rows, model.Size{Value: v})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&model.Category{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			rows := make([]model.Category, 0, len(defaultCategories))
			for _, name := range defaultCategories {
				rows = append(rows, model.Category{Name: name})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
