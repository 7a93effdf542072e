package repository

import (
	"context"
	"time"

	"shoestore/internal/domain/model"
)

type PasswordResetRepository interface {
	Create(ctx context.Context, t model.PasswordResetToken) error
	//期限内で未使用のもの
	FindValidByHash(ctx context.Context, tokenHash string, now time.Time) (model.PasswordResetToken, error)
	MarkConsumed(ctx context.Context, id int64, now time.Time) (bool, error)
	//期限切れと、consumedBeforeより前に使われたものを消す
	DeleteStale(ctx context.Context, now time.Time, consumedBefore time.Time) (int64, error)
}
