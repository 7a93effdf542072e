package repository

import (
	"context"

	"shoestore/internal/domain/model"
)

// ウォレット決済の結果
type PaymentResult struct {
	Status          model.PaymentTxStatus
	ProviderTransID string
	ResultCode      int
	Message         string
}

type PaymentTransactionRepository interface {
	Create(ctx context.Context, t model.PaymentTransaction) (model.PaymentTransaction, error)
	FindByRequestID(ctx context.Context, requestID string) (model.PaymentTransaction, error)
	//PENDINGのときだけ結果を書き込む（二重通知対策）
	CompleteIfPending(ctx context.Context, requestID string, res PaymentResult) (bool, error)
}
