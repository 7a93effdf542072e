package model

import "time"

type PaymentTxStatus string

const (
	PaymentTxPending PaymentTxStatus = "PENDING"
	PaymentTxSuccess PaymentTxStatus = "SUCCESS"
	PaymentTxFailed  PaymentTxStatus = "FAILED"
)

// ウォレット決済（MoMo）の要求と結果
type PaymentTransaction struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64           `gorm:"not null;index" json:"order_id"`
	Provider  string          `gorm:"type:varchar(20);not null" json:"provider"`
	RequestID string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"request_id"`
	Amount    int64           `gorm:"not null" json:"amount"`
	Status    PaymentTxStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	//プロバイダ側の取引ID・結果コード
	ProviderTransID string    `gorm:"type:varchar(64)" json:"provider_trans_id"`
	ResultCode      int       `gorm:"not null;default:-1" json:"result_code"`
	Message         string    `gorm:"type:varchar(255)" json:"message"`
	PayURL          string    `gorm:"type:text" json:"pay_url"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
