package model

import "time"

type Product struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	//品番（任意、あれば一意）
	Code        *string   `gorm:"column:product_code;type:varchar(64);uniqueIndex" json:"product_code"`
	Name        string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Price       int64     `gorm:"not null;check:chk_products_price,price >= 0" json:"price"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `gorm:"type:varchar(1024)" json:"image_url"`
	CategoryID  *int64    `gorm:"index" json:"category_id"`
	Category    *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// サイズ別在庫。商品更新時は丸ごと入れ替える
type ProductSize struct {
	ProductID int64    `gorm:"primaryKey" json:"product_id"`
	SizeID    int64    `gorm:"primaryKey" json:"size_id"`
	Stock     int64    `gorm:"not null;default:0;check:chk_product_sizes_stock,stock >= 0" json:"stock"`
	Product   *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	Size      *Size    `gorm:"foreignKey:SizeID;constraint:OnDelete:RESTRICT" json:"-"`
}

// 商品詳細で返すサイズ1行
type SizeStock struct {
	SizeID int64  `json:"size_id"`
	Value  string `json:"value"`
	Stock  int64  `json:"stock"`
}
