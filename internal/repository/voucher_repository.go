package repository

import (
	"context"

	"shoestore/internal/domain/model"
)

type VoucherRepository interface {
	List(ctx context.Context) ([]model.Voucher, error)
	FindByCode(ctx context.Context, code string) (model.Voucher, error)
	//チェックアウト中は行ロックして使用回数を守る
	FindByCodeForUpdate(ctx context.Context, code string) (model.Voucher, error)
	Create(ctx context.Context, v model.Voucher) (model.Voucher, error)
	Delete(ctx context.Context, id int64) error

	//上限に達していなければused_countを+1
	IncrementUsedIfAvailable(ctx context.Context, voucherID int64) (bool, error)
	HasRedeemed(ctx context.Context, voucherID, userID int64) (bool, error)
	RedeemedVoucherIDs(ctx context.Context, userID int64) ([]int64, error)
	CreateRedemption(ctx context.Context, r model.VoucherRedemption) error
}
