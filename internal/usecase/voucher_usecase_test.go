package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"shoestore/internal/domain/model"
	repo "shoestore/internal/repository"
	"shoestore/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type voucherFixture struct {
	tx        *txManagerMock
	vouchers  *voucherRepoMock
	carts     *cartRepoMock
	cartItems *cartItemRepoMock
	products  *productRepoMock
	audits    *auditRepoMock
	uc        *usecase.VoucherUsecase
}

func newVoucherFixture() *voucherFixture {
	f := &voucherFixture{
		tx:        new(txManagerMock),
		vouchers:  new(voucherRepoMock),
		carts:     new(cartRepoMock),
		cartItems: new(cartItemRepoMock),
		products:  new(productRepoMock),
		audits:    new(auditRepoMock),
	}
	f.tx.repos = &txReposMock{vouchers: f.vouchers, audits: f.audits}
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.uc = usecase.NewVoucherUsecase(f.tx, f.vouchers, f.carts, f.cartItems, f.products)
	return f
}

func timePtr(t time.Time) *time.Time { return &t }

func TestCalcDiscount(t *testing.T) {
	tests := []struct {
		name     string
		v        model.Voucher
		subtotal int64
		want     int64
	}{
		{"percent floors", model.Voucher{Type: model.VoucherTypePercent, Value: 15}, 9999, 1499},
		{"percent capped by max_discount", model.Voucher{Type: model.VoucherTypePercent, Value: 50, MaxDiscount: 20000}, 100000, 20000},
		{"percent 100 equals subtotal", model.Voucher{Type: model.VoucherTypePercent, Value: 100}, 42000, 42000},
		{"fixed", model.Voucher{Type: model.VoucherTypeFixed, Value: 30000}, 100000, 30000},
		{"fixed capped at subtotal", model.Voucher{Type: model.VoucherTypeFixed, Value: 30000}, 12000, 12000},
		{"zero subtotal", model.Voucher{Type: model.VoucherTypeFixed, Value: 30000}, 0, 0},
		{"unknown type", model.Voucher{Type: "bogo", Value: 10}, 1000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, usecase.CalcDiscount(tt.v, tt.subtotal))
		})
	}
}

func TestVoucherUsecase_ListForUser_Statuses(t *testing.T) {
	f := newVoucherFixture()
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(24 * time.Hour)

	f.vouchers.On("List", mock.Anything).Return([]model.Voucher{
		{ID: 1, Code: "USED", ExpiresAt: timePtr(future)},
		{ID: 2, Code: "OLD", ExpiresAt: timePtr(past)},
		{ID: 3, Code: "GONE", UsageLimit: 5, UsedCount: 5},
		{ID: 4, Code: "OK", ExpiresAt: timePtr(future), UsageLimit: 5, UsedCount: 1},
		{ID: 5, Code: "OPEN"},
	}, nil)
	f.vouchers.On("RedeemedVoucherIDs", mock.Anything, testUserID).Return([]int64{1}, nil)

	out, err := f.uc.ListForUser(context.Background(), testUserID)
	require.NoError(t, err)
	require.Len(t, out, 5)

	got := map[string]usecase.VoucherStatus{}
	for _, v := range out {
		got[v.Code] = v.Status
	}
	assert.Equal(t, map[string]usecase.VoucherStatus{
		"USED": usecase.VoucherUsed,
		"OLD":  usecase.VoucherExpired,
		"GONE": usecase.VoucherExhausted,
		"OK":   usecase.VoucherAvailable,
		"OPEN": usecase.VoucherAvailable,
	}, got)
}

func TestVoucherUsecase_Apply_SubtotalFromCart(t *testing.T) {
	f := newVoucherFixture()
	f.carts.On("FindActiveByUserID", mock.Anything, testUserID).Return(model.Cart{ID: testCartID}, nil)
	f.cartItems.On("ListByCartID", mock.Anything, testCartID).Return([]model.CartItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	}, nil)
	f.products.On("ListByIDs", mock.Anything, []int64{1, 2}).
		Return([]model.Product{{ID: 1, Price: 50000}, {ID: 2, Price: 80000}}, nil)
	f.vouchers.On("FindByCode", mock.Anything, "SALE10").
		Return(model.Voucher{ID: 9, Code: "SALE10", Type: model.VoucherTypePercent, Value: 10}, nil)
	f.vouchers.On("HasRedeemed", mock.Anything, int64(9), testUserID).Return(false, nil)

	out, err := f.uc.Apply(context.Background(), testUserID, "  sale10 ", 0)
	require.NoError(t, err)
	assert.Equal(t, usecase.VoucherApplyOutput{Code: "SALE10", Subtotal: 180000, Discount: 18000, Total: 162000}, out)
}

func TestVoucherUsecase_Apply_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		voucher  model.Voucher
		findErr  error
		redeemed bool
		subtotal int64
	}{
		{name: "unknown code", findErr: repo.ErrNotFound, subtotal: 1000},
		{name: "below minimum", voucher: model.Voucher{ID: 1, Type: model.VoucherTypeFixed, Value: 10, MinOrder: 5000}, subtotal: 4999},
		{name: "expired", voucher: model.Voucher{ID: 1, Type: model.VoucherTypeFixed, Value: 10, ExpiresAt: timePtr(time.Now().Add(-time.Minute))}, subtotal: 1000},
		{name: "exhausted", voucher: model.Voucher{ID: 1, Type: model.VoucherTypeFixed, Value: 10, UsageLimit: 1, UsedCount: 1}, subtotal: 1000},
		{name: "already used", voucher: model.Voucher{ID: 1, Type: model.VoucherTypeFixed, Value: 10}, redeemed: true, subtotal: 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newVoucherFixture()
			f.vouchers.On("FindByCode", mock.Anything, "CODE").Return(tt.voucher, tt.findErr)
			f.vouchers.On("HasRedeemed", mock.Anything, tt.voucher.ID, testUserID).Return(tt.redeemed, nil)

			_, err := f.uc.Apply(context.Background(), testUserID, "code", tt.subtotal)
			assert.Equal(t, http.StatusBadRequest, statusOf(err))
		})
	}
}

func TestVoucherUsecase_Apply_EmptyCart(t *testing.T) {
	f := newVoucherFixture()
	f.carts.On("FindActiveByUserID", mock.Anything, testUserID).Return(model.Cart{}, repo.ErrNotFound)

	_, err := f.uc.Apply(context.Background(), testUserID, "SALE10", 0)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	f.vouchers.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything)
}

func TestVoucherUsecase_AdminCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   usecase.VoucherCreateInput
	}{
		{"empty code", usecase.VoucherCreateInput{Type: "fixed", Value: 10}},
		{"percent over 100", usecase.VoucherCreateInput{Code: "X", Type: "percent", Value: 101}},
		{"percent zero", usecase.VoucherCreateInput{Code: "X", Type: "percent", Value: 0}},
		{"unknown type", usecase.VoucherCreateInput{Code: "X", Type: "bogo", Value: 10}},
		{"negative min order", usecase.VoucherCreateInput{Code: "X", Type: "fixed", Value: 10, MinOrder: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newVoucherFixture()
			_, err := f.uc.AdminCreate(context.Background(), adminID, tt.in)
			assert.Equal(t, http.StatusBadRequest, statusOf(err))
			f.vouchers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestVoucherUsecase_AdminCreate_NormalizesAndAudits(t *testing.T) {
	f := newVoucherFixture()
	want := model.Voucher{Code: "SUMMER", Type: model.VoucherTypePercent, Value: 20, MaxDiscount: 50000, Description: "summer sale"}
	f.vouchers.On("Create", mock.Anything, want).Return(model.Voucher{ID: 3, Code: "SUMMER", Type: model.VoucherTypePercent, Value: 20}, nil)
	f.audits.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionCreateVoucher && l.ResourceType == model.AuditResourceVoucher && l.ResourceID == 3
	})).Return(nil).Once()

	v, err := f.uc.AdminCreate(context.Background(), adminID, usecase.VoucherCreateInput{
		Code: " summer ", Type: "PERCENT", Value: 20, MaxDiscount: 50000, Description: " summer sale ",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.ID)
	f.audits.AssertExpectations(t)
}

func TestVoucherUsecase_AdminCreate_DuplicateCode(t *testing.T) {
	f := newVoucherFixture()
	f.vouchers.On("Create", mock.Anything, mock.Anything).Return(model.Voucher{}, repo.ErrConflict)

	_, err := f.uc.AdminCreate(context.Background(), adminID, usecase.VoucherCreateInput{Code: "DUP", Type: "fixed", Value: 1000})
	assert.Equal(t, http.StatusConflict, statusOf(err))
	f.audits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestVoucherUsecase_AdminDelete_NotFound(t *testing.T) {
	f := newVoucherFixture()
	f.vouchers.On("Delete", mock.Anything, int64(8)).Return(repo.ErrNotFound)

	err := f.uc.AdminDelete(context.Background(), adminID, 8)
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}
