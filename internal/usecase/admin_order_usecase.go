package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"shoestore/internal/domain/model"
	repo "shoestore/internal/repository"
)

// 管理者・スタッフ共通の注文操作
type AdminOrderUsecase struct {
	tx         repo.TransactionManager
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
}

func NewAdminOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository, orderItems repo.OrderItemRepository) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, orders: orders, orderItems: orderItems}
}

type AdminOrderListInput struct {
	Page   int
	Limit  int
	Status string
	Q      string
	UserID *int64
	From   string
	To     string
}

// 注文一覧（絞り込みとLIMIT/OFFSETはSQL側）
func (u *AdminOrderUsecase) List(ctx context.Context, in AdminOrderListInput) (OrderListOutput, error) {
	page, limit := normalizePage(in.Page, in.Limit)

	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status != "" && !model.OrderStatus(status).Valid() {
		return OrderListOutput{}, badRequest("invalid status")
	}
	if len(in.Q) > 100 {
		return OrderListOutput{}, badRequest("q too long")
	}
	from, ok := parseDateTimeRFC3339(in.From)
	if !ok {
		return OrderListOutput{}, badRequest("invalid from")
	}
	to, ok := parseDateTimeRFC3339(in.To)
	if !ok {
		return OrderListOutput{}, badRequest("invalid to")
	}

	rows, total, err := u.orders.ListAdmin(ctx, repo.AdminOrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: status,
		Q:      strings.TrimSpace(in.Q),
		UserID: in.UserID,
		From:   from,
		To:     to,
	})
	if err != nil {
		return OrderListOutput{}, dbError("admin order list", err)
	}

	orders := make([]model.Order, 0, len(rows))
	emails := make([]string, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.Order)
		emails = append(emails, row.CustomerEmail)
	}
	outs, err := attachItems(ctx, u.orderItems, orders, emails)
	if err != nil {
		return OrderListOutput{}, err
	}
	return OrderListOutput{Items: outs, Total: total, Page: page, Limit: limit}, nil
}

func (u *AdminOrderUsecase) Get(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, badRequest("invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, notFound()
	}
	if err != nil {
		return OrderOutput{}, dbError("order find", err)
	}
	items, err := u.orderItems.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, dbError("order items", err)
	}
	return OrderOutput{Order: o, Items: items}, nil
}

// ステータス更新。遷移表にない変更は400、同じステータスは何もしない
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorUserID int64, orderID int64, status string) (OrderOutput, error) {
	if actorUserID <= 0 {
		return OrderOutput{}, unauthorized()
	}
	if orderID <= 0 {
		return OrderOutput{}, badRequest("invalid id")
	}
	next := model.OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if !next.Valid() {
		return OrderOutput{}, badRequest("invalid status")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound()
		}
		if err != nil {
			return dbError("order find", err)
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return dbError("order items", err)
		}

		// すでに同じなら何もしない（200）
		if o.Status == next {
			out = OrderOutput{Order: o, Items: items}
			return nil
		}
		if !model.CanTransition(o.Status, next) {
			return badRequest("cannot change status from " + string(o.Status) + " to " + string(next))
		}

		// キャンセルは出荷前なら在庫戻し
		if next == model.OrderStatusCancelled && o.Status.HoldsStock() {
			if err := restoreStock(ctx, r.Inventory(), items); err != nil {
				return err
			}
		}

		before := o.Status
		if err := r.Orders().UpdateStatus(ctx, orderID, next); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound()
			}
			return dbError("order status update", err)
		}

		if err := writeAudit(ctx, r.AuditLogs(), actorUserID, model.AuditActionUpdateOrderStatus, model.AuditResourceOrder, orderID,
			map[string]string{"status": string(before)},
			map[string]string{"status": string(next)},
		); err != nil {
			return err
		}

		o.Status = next
		out = OrderOutput{Order: o, Items: items}
		return nil
	})
	if err != nil {
		return OrderOutput{}, txError("order status update", err)
	}
	return out, nil
}

// 注文削除。出荷前なら在庫を戻してから消す
func (u *AdminOrderUsecase) Delete(ctx context.Context, actorUserID int64, orderID int64) error {
	if actorUserID <= 0 {
		return unauthorized()
	}
	if orderID <= 0 {
		return badRequest("invalid id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound()
		}
		if err != nil {
			return dbError("order find", err)
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return dbError("order items", err)
		}
		if o.Status.HoldsStock() {
			if err := restoreStock(ctx, r.Inventory(), items); err != nil {
				return err
			}
		}

		if err := r.OrderItems().DeleteByOrderID(ctx, orderID); err != nil {
			return dbError("order items delete", err)
		}
		if err := r.Orders().Delete(ctx, orderID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound()
			}
			return dbError("order delete", err)
		}

		return writeAudit(ctx, r.AuditLogs(), actorUserID, model.AuditActionDeleteOrder, model.AuditResourceOrder, orderID,
			map[string]interface{}{"status": o.Status, "total_amount": o.TotalAmount, "user_id": o.UserID},
			nil,
		)
	})
	return txError("order delete", err)
}

// 空文字はnil（ok=true）、形式不正はok=false
func parseDateTimeRFC3339(s string) (*time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}
