package repository

import (
	"context"

	"shoestore/internal/domain/model"
)

// 保存済み支払い方法
type PaymentMethodRepository interface {
	Create(ctx context.Context, pm model.PaymentMethod) (model.PaymentMethod, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.PaymentMethod, error)
	FindByID(ctx context.Context, id int64) (model.PaymentMethod, error)
	Update(ctx context.Context, pm model.PaymentMethod) error
	Delete(ctx context.Context, id int64) error
	IsOwnedByUser(ctx context.Context, id, userID int64) (bool, error)
	//ユーザー内でdefaultは1つ
	SetDefault(ctx context.Context, userID, id int64) error
}
