package model

import "time"

// パスワード再設定トークン。平文は保存せずSHA-256のhexだけ持つ
type PasswordResetToken struct {
	ID         int64      `gorm:"primaryKey;autoIncrement"`
	UserID     int64      `gorm:"not null;index"`
	TokenHash  string     `gorm:"type:varchar(64);not null;uniqueIndex"`
	ExpiresAt  time.Time  `gorm:"not null;index"`
	ConsumedAt *time.Time `gorm:"index"`
	CreatedAt  time.Time  `gorm:"not null;autoCreateTime"`
}
