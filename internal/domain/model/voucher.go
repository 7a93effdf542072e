package model

import "time"

type VoucherType string

const (
	VoucherTypePercent VoucherType = "percent"
	VoucherTypeFixed   VoucherType = "fixed"
)

type Voucher struct {
	ID   int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Code string      `gorm:"type:varchar(64);not null;uniqueIndex" json:"code"`
	Type VoucherType `gorm:"type:varchar(20);not null" json:"type"`
	//percentなら1〜100、fixedなら金額
	Value int64 `gorm:"not null;check:chk_vouchers_value,value > 0" json:"value"`
	//percentの上限額（0は上限なし）
	MaxDiscount int64      `gorm:"not null;default:0" json:"max_discount"`
	MinOrder    int64      `gorm:"not null;default:0" json:"min_order"`
	ExpiresAt   *time.Time `json:"expires_at"`
	//0は無制限
	UsageLimit  int64     `gorm:"not null;default:0" json:"usage_limit"`
	UsedCount   int64     `gorm:"not null;default:0" json:"used_count"`
	Description string    `gorm:"type:varchar(255)" json:"description"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 1アカウント1回まで
type VoucherRedemption struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	VoucherID int64     `gorm:"not null;uniqueIndex:ux_voucher_user,priority:1" json:"voucher_id"`
	UserID    int64     `gorm:"not null;uniqueIndex:ux_voucher_user,priority:2;index" json:"user_id"`
	OrderID   int64     `gorm:"not null;index" json:"order_id"`
	Voucher   *Voucher  `gorm:"foreignKey:VoucherID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
