package repository

import (
	"context"

	"shoestore/internal/domain/model"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 同一商品・同一サイズはプラス
	UpsertLine(ctx context.Context, cartID int64, line model.CartLine) error
	// ゲストカートを1文でまとめて加算
	MergeLines(ctx context.Context, cartID int64, lines []model.CartLine) error
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	// 購入した明細だけ消す
	DeleteByIDs(ctx context.Context, cartID int64, ids []int64) error
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)
	IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error)
}
