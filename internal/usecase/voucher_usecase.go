package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"shoestore/internal/domain/model"
	repo "shoestore/internal/repository"

	"github.com/shopspring/decimal"
)

// 顧客から見たバウチャーの状態
type VoucherStatus string

const (
	VoucherAvailable VoucherStatus = "available"
	VoucherUsed      VoucherStatus = "used"
	VoucherExpired   VoucherStatus = "expired"
	VoucherExhausted VoucherStatus = "exhausted"
)

type VoucherView struct {
	model.Voucher
	Status VoucherStatus `json:"status"`
}

type VoucherApplyOutput struct {
	Code     string `json:"code"`
	Subtotal int64  `json:"subtotal"`
	Discount int64  `json:"discount"`
	Total    int64  `json:"total"`
}

type VoucherCreateInput struct {
	Code        string
	Type        string
	Value       int64
	MaxDiscount int64
	MinOrder    int64
	ExpiresAt   *time.Time
	UsageLimit  int64
	Description string
}

type VoucherUsecase struct {
	tx       repo.TransactionManager
	vouchers repo.VoucherRepository
	carts    repo.CartRepository
	items    repo.CartItemRepository
	products repo.ProductRepository
	now      func() time.Time
}

func NewVoucherUsecase(
	tx repo.TransactionManager,
	vouchers repo.VoucherRepository,
	carts repo.CartRepository,
	items repo.CartItemRepository,
	products repo.ProductRepository,
) *VoucherUsecase {
	return &VoucherUsecase{
		tx:       tx,
		vouchers: vouchers,
		carts:    carts,
		items:    items,
		products: products,
		now:      time.Now,
	}
}

// 割引額。percentは切り捨てでmax_discountまで、どちらも小計を超えない
func CalcDiscount(v model.Voucher, subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}

	var d decimal.Decimal
	switch v.Type {
	case model.VoucherTypePercent:
		d = decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromInt(v.Value)).
			Div(decimal.NewFromInt(100)).
			Floor()
		if v.MaxDiscount > 0 {
			d = decimal.Min(d, decimal.NewFromInt(v.MaxDiscount))
		}
	case model.VoucherTypeFixed:
		d = decimal.NewFromInt(v.Value)
	default:
		return 0
	}

	d = decimal.Min(d, decimal.NewFromInt(subtotal))
	if d.IsNegative() {
		return 0
	}
	return d.IntPart()
}

// 期限・上限の状態（ユーザーの使用済みは見ない）
func voucherStatus(v model.Voucher, now time.Time) VoucherStatus {
	if v.ExpiresAt != nil && !now.Before(*v.ExpiresAt) {
		return VoucherExpired
	}
	if v.UsageLimit > 0 && v.UsedCount >= v.UsageLimit {
		return VoucherExhausted
	}
	return VoucherAvailable
}

// 使えないならHTTPErrorを返す
func validateVoucher(ctx context.Context, vouchers repo.VoucherRepository, v model.Voucher, userID, subtotal int64, now time.Time) error {
	switch voucherStatus(v, now) {
	case VoucherExpired:
		return badRequest("voucher expired")
	case VoucherExhausted:
		return badRequest("voucher exhausted")
	}
	if subtotal < v.MinOrder {
		return badRequest("order total below voucher minimum")
	}

	used, err := vouchers.HasRedeemed(ctx, v.ID, userID)
	if err != nil {
		return dbError("voucher redeemed check", err)
	}
	if used {
		return badRequest("voucher already used")
	}
	return nil
}

// GET /me/vouchers
func (u *VoucherUsecase) ListForUser(ctx context.Context, userID int64) ([]VoucherView, error) {
	if userID <= 0 {
		return nil, unauthorized()
	}

	list, err := u.vouchers.List(ctx)
	if err != nil {
		return nil, dbError("voucher list", err)
	}
	redeemed, err := u.vouchers.RedeemedVoucherIDs(ctx, userID)
	if err != nil {
		return nil, dbError("voucher redeemed list", err)
	}
	used := make(map[int64]struct{}, len(redeemed))
	for _, id := range redeemed {
		used[id] = struct{}{}
	}

	now := u.now()
	out := make([]VoucherView, 0, len(list))
	for _, v := range list {
		st := voucherStatus(v, now)
		if _, ok := used[v.ID]; ok {
			st = VoucherUsed
		}
		out = append(out, VoucherView{Voucher: v, Status: st})
	}
	return out, nil
}

// POST /me/vouchers/apply。subtotalが0ならサーバーのカートから計算
func (u *VoucherUsecase) Apply(ctx context.Context, userID int64, code string, subtotal int64) (VoucherApplyOutput, error) {
	if userID <= 0 {
		return VoucherApplyOutput{}, unauthorized()
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return VoucherApplyOutput{}, badRequest("code required")
	}
	if subtotal < 0 {
		return VoucherApplyOutput{}, badRequest("invalid subtotal")
	}

	if subtotal == 0 {
		var err error
		if subtotal, err = u.cartSubtotal(ctx, userID); err != nil {
			return VoucherApplyOutput{}, err
		}
	}

	v, err := u.vouchers.FindByCode(ctx, code)
	if errors.Is(err, repo.ErrNotFound) {
		return VoucherApplyOutput{}, badRequest("invalid voucher")
	}
	if err != nil {
		return VoucherApplyOutput{}, dbError("voucher find", err)
	}

	if err := validateVoucher(ctx, u.vouchers, v, userID, subtotal, u.now()); err != nil {
		return VoucherApplyOutput{}, err
	}

	discount := CalcDiscount(v, subtotal)
	return VoucherApplyOutput{
		Code:     v.Code,
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal - discount,
	}, nil
}

func (u *VoucherUsecase) cartSubtotal(ctx context.Context, userID int64) (int64, error) {
	cart, err := u.carts.FindActiveByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return 0, badRequest("cart empty")
	}
	if err != nil {
		return 0, dbError("cart find", err)
	}
	items, err := u.items.ListByCartID(ctx, cart.ID)
	if err != nil {
		return 0, dbError("cart items", err)
	}
	if len(items) == 0 {
		return 0, badRequest("cart empty")
	}

	priceByID, err := productPrices(ctx, u.products, items)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, it := range items {
		if p, ok := priceByID[it.ProductID]; ok {
			total += p.Price * it.Quantity
		}
	}
	return total, nil
}

// GET /admin/vouchers
func (u *VoucherUsecase) AdminList(ctx context.Context) ([]model.Voucher, error) {
	list, err := u.vouchers.List(ctx)
	if err != nil {
		return nil, dbError("voucher list", err)
	}
	return list, nil
}

func (u *VoucherUsecase) AdminCreate(ctx context.Context, actorUserID int64, in VoucherCreateInput) (model.Voucher, error) {
	if actorUserID <= 0 {
		return model.Voucher{}, unauthorized()
	}
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" || len(code) > 64 {
		return model.Voucher{}, badRequest("invalid code")
	}
	typ := model.VoucherType(strings.ToLower(strings.TrimSpace(in.Type)))
	switch typ {
	case model.VoucherTypePercent:
		if in.Value < 1 || in.Value > 100 {
			return model.Voucher{}, badRequest("percent value must be 1..100")
		}
	case model.VoucherTypeFixed:
		if in.Value < 1 {
			return model.Voucher{}, badRequest("value must be > 0")
		}
	default:
		return model.Voucher{}, badRequest("invalid type")
	}
	if in.MaxDiscount < 0 || in.MinOrder < 0 || in.UsageLimit < 0 {
		return model.Voucher{}, badRequest("negative value")
	}

	var created model.Voucher
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		v, err := r.Vouchers().Create(ctx, model.Voucher{
			Code:        code,
			Type:        typ,
			Value:       in.Value,
			MaxDiscount: in.MaxDiscount,
			MinOrder:    in.MinOrder,
			ExpiresAt:   in.ExpiresAt,
			UsageLimit:  in.UsageLimit,
			Description: strings.TrimSpace(in.Description),
		})
		if errors.Is(err, repo.ErrConflict) {
			return conflict("voucher code already exists")
		}
		if err != nil {
			return dbError("voucher create", err)
		}
		created = v
		return writeAudit(ctx, r.AuditLogs(), actorUserID, model.AuditActionCreateVoucher, model.AuditResourceVoucher, v.ID, nil, v)
	})
	if err != nil {
		return model.Voucher{}, txError("voucher create", err)
	}
	return created, nil
}

func (u *VoucherUsecase) AdminDelete(ctx context.Context, actorUserID int64, voucherID int64) error {
	if actorUserID <= 0 {
		return unauthorized()
	}
	if voucherID <= 0 {
		return badRequest("invalid id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Vouchers().Delete(ctx, voucherID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound()
			}
			return dbError("voucher delete", err)
		}
		return writeAudit(ctx, r.AuditLogs(), actorUserID, model.AuditActionDeleteVoucher, model.AuditResourceVoucher, voucherID, map[string]int64{"id": voucherID}, nil)
	})
	return txError("voucher delete", err)
}
