package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"shoestore/internal/domain/model"
	"shoestore/internal/infra/queue"
	"shoestore/internal/logger"
	repo "shoestore/internal/repository"

	"go.uber.org/zap"
)

type OrderUsecase struct {
	tx          repo.TransactionManager
	orders      repo.OrderRepository
	orderItems  repo.OrderItemRepository
	addresses   repo.AddressRepository
	payments    repo.PaymentMethodRepository
	users       repo.UserRepository
	mailer      EmailPublisher
	shippingFee int64
	now         func() time.Time
}

// mailerはnil可（通知しない）
func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	orderItems repo.OrderItemRepository,
	addresses repo.AddressRepository,
	payments repo.PaymentMethodRepository,
	users repo.UserRepository,
	mailer EmailPublisher,
	shippingFee int64,
) *OrderUsecase {
	return &OrderUsecase{
		tx:          tx,
		orders:      orders,
		orderItems:  orderItems,
		addresses:   addresses,
		payments:    payments,
		users:       users,
		mailer:      mailer,
		shippingFee: shippingFee,
		now:         time.Now,
	}
}

type CheckoutInput struct {
	AddressID       int64
	PaymentMethodID int64
	VoucherCode     string
	//空ならカート全体
	CartItemIDs    []int64
	IdempotencyKey string
}

type OrderOutput struct {
	model.Order
	CustomerEmail string            `json:"customer_email,omitempty"`
	Items         []model.OrderItem `json:"items"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// POST /orders/checkout
func (u *OrderUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, unauthorized()
	}
	if in.AddressID <= 0 {
		return OrderOutput{}, badRequest("address_id required")
	}
	if in.PaymentMethodID <= 0 {
		return OrderOutput{}, badRequest("payment_method_id required")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > 255 {
		return OrderOutput{}, badRequest("invalid idempotency_key")
	}
	code := strings.ToUpper(strings.TrimSpace(in.VoucherCode))

	//address_idの存在確認＋所有チェック
	addr, err := u.addresses.FindByID(ctx, in.AddressID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, notFound()
	}
	if err != nil {
		return OrderOutput{}, dbError("address find", err)
	}
	if addr.UserID != userID {
		return OrderOutput{}, forbidden()
	}

	pm, err := u.payments.FindByID(ctx, in.PaymentMethodID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, notFound()
	}
	if err != nil {
		return OrderOutput{}, dbError("payment method find", err)
	}
	if pm.UserID != userID {
		return OrderOutput{}, forbidden()
	}

	var (
		out    OrderOutput
		replay bool
	)

	//注文処理はトランザクション
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		if key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err != nil {
				return dbError("order idempotency lookup", err)
			}
			if found {
				items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
				if err != nil {
					return dbError("order items", err)
				}
				out = OrderOutput{Order: existing, Items: items}
				replay = true
				return nil
			}
		}

		//ACTIVEカート取得
		cart, err := r.Carts().FindActiveByUserID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return badRequest("cart empty")
		}
		if err != nil {
			return dbError("cart find", err)
		}
		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return dbError("cart items", err)
		}
		cartItems = selectCartItems(cartItems, in.CartItemIDs)
		if len(cartItems) == 0 {
			return badRequest("cart empty")
		}

		products, sizes, err := loadCatalog(ctx, r, cartItems)
		if err != nil {
			return err
		}

		//価格は現在の商品価格を焼き付ける
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		purchased := make([]int64, 0, len(cartItems))
		var subtotal int64
		for _, ci := range cartItems {
			p, ok := products[ci.ProductID]
			if !ok {
				return badRequest(fmt.Sprintf("product %d not available", ci.ProductID))
			}
			sz, ok := sizes[ci.SizeID]
			if !ok {
				return badRequest(fmt.Sprintf("size %d not available", ci.SizeID))
			}
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           p.ID,
				ProductNameSnapshot: p.Name,
				SizeID:              sz.ID,
				SizeValue:           sz.Value,
				UnitPriceSnapshot:   p.Price,
				Quantity:            ci.Quantity,
			})
			purchased = append(purchased, ci.ID)
			subtotal += p.Price * ci.Quantity
		}

		//バウチャー（行ロックして使用回数を守る）
		var (
			voucher  model.Voucher
			discount int64
		)
		if code != "" {
			voucher, err = r.Vouchers().FindByCodeForUpdate(ctx, code)
			if errors.Is(err, repo.ErrNotFound) {
				return badRequest("invalid voucher")
			}
			if err != nil {
				return dbError("voucher find", err)
			}
			if err := validateVoucher(ctx, r.Vouchers(), voucher, userID, subtotal, u.now()); err != nil {
				return err
			}
			ok, err := r.Vouchers().IncrementUsedIfAvailable(ctx, voucher.ID)
			if err != nil {
				return dbError("voucher use", err)
			}
			if !ok {
				return badRequest("voucher exhausted")
			}
			discount = CalcDiscount(voucher, subtotal)
		}

		//在庫を確定時に再チェックして減らす（行ロックは常に同じ順で取る）
		for _, it := range inLockOrder(orderItems) {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.SizeID, it.Quantity)
			if err != nil {
				return dbError("stock decrease", err)
			}
			if !ok {
				return badRequest(fmt.Sprintf("out of stock: %s (size %s)", it.ProductNameSnapshot, it.SizeValue))
			}
		}

		order := model.Order{
			UserID:          userID,
			Status:          model.OrderStatusPending,
			Subtotal:        subtotal,
			Discount:        discount,
			ShippingFee:     u.shippingFee,
			TotalAmount:     subtotal - discount + u.shippingFee,
			PaymentMethodID: pm.ID,
			PaymentType:     pm.Type,
			AddressID:       addr.ID,
			ShippingName:    addr.RecipientName,
			ShippingPhone:   addr.Phone,
			ShippingAddress: addr.FullText(),
		}
		if code != "" {
			order.VoucherCode = &voucher.Code
		}
		if key != "" {
			order.IdempotencyKey = &key
		}

		orderID, err := r.Orders().Create(ctx, order)
		if errors.Is(err, repo.ErrConflict) {
			//同時に同じキーが入った。トランザクションは中断されているのでやり直してもらう
			return conflict("duplicate idempotency key")
		}
		if err != nil {
			return dbError("order create", err)
		}
		order.ID = orderID

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return dbError("order items create", err)
		}

		if code != "" {
			err := r.Vouchers().CreateRedemption(ctx, model.VoucherRedemption{
				VoucherID: voucher.ID,
				UserID:    userID,
				OrderID:   orderID,
			})
			if errors.Is(err, repo.ErrConflict) {
				return badRequest("voucher already used")
			}
			if err != nil {
				return dbError("voucher redemption", err)
			}
		}

		//ウォレット以外は購入した明細をここで消す。ウォレットは決済成功まで残す
		if pm.Type != model.PaymentTypeWallet {
			if err := r.CartItems().DeleteByIDs(ctx, cart.ID, purchased); err != nil {
				return dbError("cart items delete", err)
			}
		}

		for i := range orderItems {
			orderItems[i].OrderID = orderID
		}
		out = OrderOutput{Order: order, Items: orderItems}
		return nil
	})
	if err != nil {
		return OrderOutput{}, txError("checkout", err)
	}

	if !replay {
		u.notifyOrderPlaced(ctx, out.Order)
	}
	return out, nil
}

// GET /orders
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, unauthorized()
	}
	page, limit = normalizePage(page, limit)

	orders, total, err := u.orders.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return OrderListOutput{}, dbError("order list", err)
	}

	outs, err := attachItems(ctx, u.orderItems, orders, nil)
	if err != nil {
		return OrderListOutput{}, err
	}
	return OrderListOutput{Items: outs, Total: total, Page: page, Limit: limit}, nil
}

// GET /orders/:id
func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, unauthorized()
	}
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
	if o.UserID != userID {
		//他人の注文は「存在しない扱い」にする
		return OrderOutput{}, notFound()
	}

	items, err := u.orderItems.ListByOrderID(ctx, orderID)
	if err != nil {
		return OrderOutput{}, dbError("order items", err)
	}
	return OrderOutput{Order: o, Items: items}, nil
}

// POST /orders/:id/cancel（pendingのみ）
func (u *OrderUsecase) CancelMyOrder(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, unauthorized()
	}
	if orderID <= 0 {
		return OrderOutput{}, badRequest("invalid id")
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
		if o.UserID != userID {
			return notFound()
		}
		if o.Status != model.OrderStatusPending {
			return badRequest("only pending orders can be cancelled")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return dbError("order items", err)
		}
		if err := restoreStock(ctx, r.Inventory(), items); err != nil {
			return err
		}
		if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusCancelled); err != nil {
			return dbError("order status update", err)
		}

		o.Status = model.OrderStatusCancelled
		out = OrderOutput{Order: o, Items: items}
		return nil
	})
	if err != nil {
		return OrderOutput{}, txError("order cancel", err)
	}
	return out, nil
}

// コミット後の通知（失敗はログだけ）
func (u *OrderUsecase) notifyOrderPlaced(ctx context.Context, o model.Order) {
	if u.mailer == nil {
		return
	}
	user, err := u.users.FindByID(ctx, o.UserID)
	if err != nil {
		logger.L().Warn("order mail: user lookup", zap.Int64("order_id", o.ID), zap.Error(err))
		return
	}

	err = u.mailer.SendEmail(ctx, strconv.FormatInt(o.ID, 10), queue.EmailMessage{
		To:       user.Email,
		Subject:  fmt.Sprintf("Xác nhận đơn hàng #%d", o.ID),
		Template: "order_placed",
		Data: map[string]any{
			"order_id":     o.ID,
			"total_amount": o.TotalAmount,
			"payment_type": string(o.PaymentType),
		},
	})
	if err != nil {
		logger.L().Warn("order mail: publish", zap.Int64("order_id", o.ID), zap.Error(err))
	}
}

// 指定があればその明細だけ
func selectCartItems(items []model.CartItem, ids []int64) []model.CartItem {
	if len(ids) == 0 {
		return items
	}
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]model.CartItem, 0, len(ids))
	for _, it := range items {
		if _, ok := want[it.ID]; ok {
			out = append(out, it)
		}
	}
	return out
}

func loadCatalog(ctx context.Context, r repo.TxRepos, items []model.CartItem) (map[int64]model.Product, map[int64]model.Size, error) {
	products, err := productPrices(ctx, r.Products(), items)
	if err != nil {
		return nil, nil, err
	}

	sizeIDs := make([]int64, 0, len(items))
	for _, it := range items {
		sizeIDs = append(sizeIDs, it.SizeID)
	}
	list, err := r.References().FindSizesByIDs(ctx, sizeIDs)
	if err != nil {
		return nil, nil, dbError("size lookup", err)
	}
	sizes := make(map[int64]model.Size, len(list))
	for _, s := range list {
		sizes[s.ID] = s
	}
	return products, sizes, nil
}

// 在庫戻し。商品が削除済みの行は飛ばす
func restoreStock(ctx context.Context, inv repo.InventoryRepository, items []model.OrderItem) error {
	for _, it := range inLockOrder(items) {
		err := inv.IncreaseStock(ctx, it.ProductID, it.SizeID, it.Quantity)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return dbError("stock restore", err)
		}
	}
	return nil
}

// (product_id, size_id)順のコピー。product_sizesの行ロック順をそろえてデッドロックを避ける
func inLockOrder(items []model.OrderItem) []model.OrderItem {
	out := make([]model.OrderItem, len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].SizeID < out[j].SizeID
	})
	return out
}

// 注文明細をまとめて取って注文に付ける
func attachItems(ctx context.Context, itemsRepo repo.OrderItemRepository, orders []model.Order, emails []string) ([]OrderOutput, error) {
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	byOrder := make(map[int64][]model.OrderItem, len(orders))
	if len(ids) > 0 {
		items, err := itemsRepo.ListByOrderIDs(ctx, ids)
		if err != nil {
			return nil, dbError("order items", err)
		}
		for _, it := range items {
			byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
		}
	}

	outs := make([]OrderOutput, 0, len(orders))
	for i, o := range orders {
		items := byOrder[o.ID]
		if items == nil {
			items = []model.OrderItem{}
		}
		out := OrderOutput{Order: o, Items: items}
		if i < len(emails) {
			out.CustomerEmail = emails[i]
		}
		outs = append(outs, out)
	}
	return outs, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
