package model

import "time"

// 配送先住所
type Address struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//宛名
	RecipientName string `gorm:"type:varchar(255);not null" json:"recipient_name"`

	//電話番号
	Phone string `gorm:"type:varchar(30);not null" json:"phone"`

	//番地・通り
	Line string `gorm:"type:varchar(255);not null" json:"line"`

	Ward     string `gorm:"type:varchar(100)" json:"ward"`
	District string `gorm:"type:varchar(100)" json:"district"`
	City     string `gorm:"type:varchar(100);not null" json:"city"`

	//このユーザーのデフォルト住所か
	IsDefault bool `gorm:"not null;default:false" json:"is_default"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// 注文に焼き付ける1行の住所
func (a Address) FullText() string {
	out := a.Line
	for _, p := range []string{a.Ward, a.District, a.City} {
		if p == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += p
	}
	return out
}
