package model

import "time"

// カートの明細。(cart, product, size)で1行
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64     `gorm:"not null;uniqueIndex:ux_cart_items_line,priority:1" json:"cart_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:ux_cart_items_line,priority:2;index" json:"product_id"`
	SizeID    int64     `gorm:"not null;uniqueIndex:ux_cart_items_line,priority:3" json:"size_id"`
	Quantity  int64     `gorm:"not null;check:chk_cart_items_qty,quantity >= 1" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// ゲストカートの1行（ログイン時にマージする）
type CartLine struct {
	ProductID int64 `json:"product_id"`
	SizeID    int64 `json:"size_id"`
	Quantity  int64 `json:"quantity"`
}
