package repository

import (
	"context"
	"time"

	"shoestore/internal/domain/model"
)

// 管理者・スタッフ用の絞り込み。qは注文ID・メール・宛名・電話
type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	Q      string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

// 一覧用（顧客メールつき）
type OrderListRow struct {
	model.Order
	CustomerEmail string `json:"customer_email"`
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	//行ロックつき（ステータス更新用）
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	Delete(ctx context.Context, orderID int64) error

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)
	//管理者用の注文一覧（LIMIT/OFFSETはSQL側）
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]OrderListRow, int64, error)
}
