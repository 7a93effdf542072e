package repository

import (
	"context"

	"shoestore/internal/domain/model"
	repo "shoestore/internal/repository"

	"gorm.io/gorm"
)

type PaymentTransactionGormRepository struct {
	db *gorm.DB
}

func NewPaymentTransactionGormRepository(db *gorm.DB) *PaymentTransactionGormRepository {
	return &PaymentTransactionGormRepository{db: db}
}

func (r *PaymentTransactionGormRepository) Create(ctx context.Context, t model.PaymentTransaction) (model.PaymentTransaction, error) {
	if err := r.db.WithContext(ctx).Create(&t).Error; err != nil {
		return model.PaymentTransaction{}, translateErr(err)
	}
	return t, nil
}

func (r *PaymentTransactionGormRepository) FindByRequestID(ctx context.Context, requestID string) (model.PaymentTransaction, error) {
	var t model.PaymentTransaction
	if err := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&t).Error; err != nil {
		return model.PaymentTransaction{}, translateErr(err)
	}
	return t, nil
}

func (r *PaymentTransactionGormRepository) CompleteIfPending(ctx context.Context, requestID string, res repo.PaymentResult) (bool, error) {
	out := r.db.WithContext(ctx).
		Model(&model.PaymentTransaction{}).
		Where("request_id = ? AND status = ?", requestID, model.PaymentTxPending).
		Updates(map[string]interface{}{
			"status":            res.Status,
			"provider_trans_id": res.ProviderTransID,
			"result_code":       res.ResultCode,
			"message":           res.Message,
		})
	if out.Error != nil {
		return false, out.Error
	}
	return out.RowsAffected == 1, nil
}
