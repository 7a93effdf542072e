package model

import "time"

// 注文明細。価格・商品名・サイズは注文時点の値を焼き付ける
type OrderItem struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64     `gorm:"not null;index" json:"order_id"`
	ProductID           int64     `gorm:"not null;index" json:"product_id"`
	ProductNameSnapshot string    `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	SizeID              int64     `gorm:"not null" json:"size_id"`
	SizeValue           string    `gorm:"type:varchar(20);not null" json:"size_value"`
	UnitPriceSnapshot   int64     `gorm:"not null" json:"unit_price_snapshot"`
	Quantity            int64     `gorm:"not null;check:chk_order_items_qty,quantity >= 1" json:"quantity"`
	CreatedAt           time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
