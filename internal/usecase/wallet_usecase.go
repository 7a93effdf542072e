package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"shoestore/internal/domain/model"
	"shoestore/internal/infra/payment"
	"shoestore/internal/logger"
	repo "shoestore/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const providerMomo = "momo"

type WalletPaymentOutput struct {
	OrderID   int64  `json:"order_id"`
	RequestID string `json:"request_id"`
	PayURL    string `json:"pay_url"`
	Amount    int64  `json:"amount"`
}

type WalletCallbackOutput struct {
	OrderID int64                 `json:"order_id"`
	Success bool                  `json:"success"`
	Status  model.OrderStatus     `json:"status"`
	Payment model.PaymentTxStatus `json:"payment_status"`
	//入金済みだが注文はキャンセル済み
	RefundRequired bool `json:"refund_required,omitempty"`
}

// ウォレット決済（MoMo）。成功したら注文をconfirmedにしてカートを空にする
type WalletUsecase struct {
	tx      repo.TransactionManager
	orders  repo.OrderRepository
	gateway WalletGateway
}

// gatewayがnilなら決済APIは503
func NewWalletUsecase(tx repo.TransactionManager, orders repo.OrderRepository, gateway WalletGateway) *WalletUsecase {
	return &WalletUsecase{tx: tx, orders: orders, gateway: gateway}
}

// POST /momo/create-payment
func (u *WalletUsecase) CreatePayment(ctx context.Context, userID, orderID int64) (WalletPaymentOutput, error) {
	if userID <= 0 {
		return WalletPaymentOutput{}, unauthorized()
	}
	if orderID <= 0 {
		return WalletPaymentOutput{}, badRequest("order_id required")
	}
	if u.gateway == nil {
		return WalletPaymentOutput{}, NewHTTPError(http.StatusServiceUnavailable, "wallet payment unavailable")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return WalletPaymentOutput{}, notFound()
	}
	if err != nil {
		return WalletPaymentOutput{}, dbError("order find", err)
	}
	if o.UserID != userID {
		return WalletPaymentOutput{}, notFound()
	}
	if o.PaymentType != model.PaymentTypeWallet {
		return WalletPaymentOutput{}, badRequest("order is not a wallet payment")
	}
	if o.Status != model.OrderStatusPending {
		return WalletPaymentOutput{}, badRequest("order is not awaiting payment")
	}

	requestID := uuid.NewString()
	res, err := u.gateway.CreatePayment(ctx, payment.CreateRequest{
		RequestID: requestID,
		//プロバイダ側のorderIdは要求ごとに一意
		OrderRef:  strconv.FormatInt(o.ID, 10) + "-" + requestID[:8],
		Amount:    o.TotalAmount,
		OrderInfo: fmt.Sprintf("Thanh toán đơn hàng #%d", o.ID),
	})
	if err != nil {
		logger.L().Warn("momo create payment", zap.Int64("order_id", o.ID), zap.Error(err))
		return WalletPaymentOutput{}, NewHTTPError(http.StatusBadGateway, "wallet provider error")
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		_, err := r.Payments().Create(ctx, model.PaymentTransaction{
			OrderID:   o.ID,
			Provider:  providerMomo,
			RequestID: requestID,
			Amount:    o.TotalAmount,
			Status:    model.PaymentTxPending,
			PayURL:    res.PayURL,
		})
		if err != nil {
			return dbError("payment create", err)
		}
		return nil
	})
	if err != nil {
		return WalletPaymentOutput{}, txError("payment create", err)
	}

	return WalletPaymentOutput{
		OrderID:   o.ID,
		RequestID: requestID,
		PayURL:    res.PayURL,
		Amount:    o.TotalAmount,
	}, nil
}

// POST /momo/ipn と GET /momo/return。同じ通知が何度来ても結果は1回だけ反映する
func (u *WalletUsecase) HandleCallback(ctx context.Context, cb payment.Callback) (WalletCallbackOutput, error) {
	if u.gateway == nil {
		return WalletCallbackOutput{}, NewHTTPError(http.StatusServiceUnavailable, "wallet payment unavailable")
	}
	if !u.gateway.VerifyCallback(cb) {
		return WalletCallbackOutput{}, badRequest("invalid signature")
	}

	var out WalletCallbackOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := r.Payments().FindByRequestID(ctx, cb.RequestID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound()
		}
		if err != nil {
			return dbError("payment find", err)
		}
		if t.Amount != cb.Amount {
			return badRequest("amount mismatch")
		}

		result := repo.PaymentResult{
			Status:          model.PaymentTxFailed,
			ProviderTransID: strconv.FormatInt(cb.TransID, 10),
			ResultCode:      cb.ResultCode,
			Message:         cb.Message,
		}
		if cb.ResultCode == 0 {
			result.Status = model.PaymentTxSuccess
		}

		updated, err := r.Payments().CompleteIfPending(ctx, cb.RequestID, result)
		if err != nil {
			return dbError("payment complete", err)
		}

		o, err := r.Orders().FindByIDForUpdate(ctx, t.OrderID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound()
		}
		if err != nil {
			return dbError("order find", err)
		}

		out = WalletCallbackOutput{OrderID: o.ID, Status: o.Status, Payment: t.Status}
		if !updated {
			//処理済み
			out.Success = t.Status == model.PaymentTxSuccess
			return nil
		}
		out.Payment = result.Status
		if result.Status != model.PaymentTxSuccess {
			return nil
		}
		out.Success = true

		//キャンセル後に入金された。注文は戻さず返金待ちとして残す
		if o.Status == model.OrderStatusCancelled {
			logger.L().Warn("wallet payment for cancelled order, refund required",
				zap.Int64("order_id", o.ID),
				zap.String("request_id", cb.RequestID),
				zap.Int64("trans_id", cb.TransID),
				zap.Int64("amount", cb.Amount),
			)
			out.RefundRequired = true
			return writeAudit(ctx, r.AuditLogs(), o.UserID, model.AuditActionPaymentRefundRequired, model.AuditResourceOrder, o.ID,
				map[string]string{"status": string(o.Status)},
				map[string]interface{}{"request_id": cb.RequestID, "trans_id": cb.TransID, "amount": cb.Amount},
			)
		}

		if o.Status == model.OrderStatusPending {
			if err := r.Orders().UpdateStatus(ctx, o.ID, model.OrderStatusConfirmed); err != nil {
				return dbError("order confirm", err)
			}
			out.Status = model.OrderStatusConfirmed
		}
		return clearPurchasedLines(ctx, r, o)
	})
	if err != nil {
		return WalletCallbackOutput{}, txError("wallet callback", err)
	}
	return out, nil
}

// 注文に入った(product,size)の明細だけカートから消す
func clearPurchasedLines(ctx context.Context, r repo.TxRepos, o model.Order) error {
	cart, err := r.Carts().FindActiveByUserID(ctx, o.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return dbError("cart find", err)
	}

	items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		return dbError("order items", err)
	}
	type key struct{ p, s int64 }
	bought := make(map[key]struct{}, len(items))
	for _, it := range items {
		bought[key{it.ProductID, it.SizeID}] = struct{}{}
	}

	lines, err := r.CartItems().ListByCartID(ctx, cart.ID)
	if err != nil {
		return dbError("cart items", err)
	}
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		if _, ok := bought[key{l.ProductID, l.SizeID}]; ok {
			ids = append(ids, l.ID)
		}
	}
	if err := r.CartItems().DeleteByIDs(ctx, cart.ID, ids); err != nil {
		return dbError("cart items delete", err)
	}
	return nil
}
