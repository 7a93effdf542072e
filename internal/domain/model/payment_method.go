package model

import "time"

type PaymentType string

const (
	PaymentTypeCOD    PaymentType = "COD"
	PaymentTypeCard   PaymentType = "CARD"
	PaymentTypeBank   PaymentType = "BANK"
	PaymentTypeWallet PaymentType = "WALLET"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentTypeCOD, PaymentTypeCard, PaymentTypeBank, PaymentTypeWallet:
		return true
	}
	return false
}

// 保存済みの支払い方法。カード番号は下4桁だけ持つ
type PaymentMethod struct {
	ID         int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64       `gorm:"not null;index" json:"user_id"`
	Type       PaymentType `gorm:"type:varchar(20);not null" json:"type"`
	Brand      string      `gorm:"type:varchar(50)" json:"brand"`
	HolderName string      `gorm:"type:varchar(255)" json:"holder_name"`
	Last4      string      `gorm:"type:varchar(4)" json:"last4"`
	IsDefault  bool        `gorm:"not null;default:false" json:"is_default"`
	CreatedAt  time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"not null" json:"updated_at"`
}
