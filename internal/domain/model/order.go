package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type Order struct {
	ID     int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64       `gorm:"not null;index;uniqueIndex:ux_orders_idem,priority:1" json:"user_id"`
	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//金額（Σ(price×qty) − discount + shipping）
	Subtotal    int64   `gorm:"not null;check:chk_orders_subtotal,subtotal >= 0" json:"subtotal"`
	Discount    int64   `gorm:"not null;default:0" json:"discount"`
	ShippingFee int64   `gorm:"not null;default:0" json:"shipping_fee"`
	TotalAmount int64   `gorm:"not null;check:chk_orders_total,total_amount >= 0" json:"total_amount"`
	VoucherCode *string `gorm:"type:varchar(64)" json:"voucher_code,omitempty"`

	PaymentMethodID int64       `gorm:"not null" json:"payment_method_id"`
	PaymentType     PaymentType `gorm:"type:varchar(20);not null" json:"payment_type"`

	//配送先スナップショット
	AddressID       int64  `gorm:"not null" json:"address_id"`
	ShippingName    string `gorm:"type:varchar(255);not null" json:"shipping_name"`
	ShippingPhone   string `gorm:"type:varchar(30);not null" json:"shipping_phone"`
	ShippingAddress string `gorm:"type:text;not null" json:"shipping_address"`

	//同じキーなら同じ注文を返す（ユーザー単位で一意）
	IdempotencyKey *string   `gorm:"type:varchar(255);uniqueIndex:ux_orders_idem,priority:2" json:"-"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
