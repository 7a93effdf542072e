package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"shoestore/internal/domain/model"
	repo "shoestore/internal/repository"
	"shoestore/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPaymentMethodUsecase_Create(t *testing.T) {
	methods := new(paymentMethodRepoMock)
	uc := usecase.NewPaymentMethodUsecase(methods)

	methods.On("ListByUserID", mock.Anything, int64(7)).Return([]model.PaymentMethod{}, nil).Once()
	methods.On("Create", mock.Anything, mock.MatchedBy(func(pm model.PaymentMethod) bool {
		return pm.Type == model.PaymentTypeCard && pm.Last4 == "4242" && pm.IsDefault
	})).Return(model.PaymentMethod{ID: 1, UserID: 7, Type: model.PaymentTypeCard, Last4: "4242", IsDefault: true}, nil).Once()

	got, err := uc.Create(context.Background(), 7, usecase.PaymentMethodInput{Type: " card ", Brand: "VISA", Last4: "4242"})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentTypeCard, got.Type)
	methods.AssertExpectations(t)
}

func TestPaymentMethodUsecase_Create_Validation(t *testing.T) {
	cases := []struct {
		name string
		in   usecase.PaymentMethodInput
		msg  string
	}{
		{"unknown type", usecase.PaymentMethodInput{Type: "crypto"}, "invalid type"},
		{"card without last4", usecase.PaymentMethodInput{Type: "CARD"}, "last4 must be 4 digits"},
		{"card non digit", usecase.PaymentMethodInput{Type: "CARD", Last4: "42a2"}, "last4 must be 4 digits"},
		{"bank long last4", usecase.PaymentMethodInput{Type: "BANK", Last4: "123456"}, "last4 too long"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			methods := new(paymentMethodRepoMock)
			uc := usecase.NewPaymentMethodUsecase(methods)

			_, err := uc.Create(context.Background(), 7, tc.in)
			he, ok := usecase.AsHTTPError(err)
			require.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, he.Status)
			assert.Equal(t, tc.msg, he.Message)
			methods.AssertNotCalled(t, "ListByUserID", mock.Anything, mock.Anything)
		})
	}
}

func TestPaymentMethodUsecase_WalletAndCODNeedNoLast4(t *testing.T) {
	for _, typ := range []string{"WALLET", "COD"} {
		methods := new(paymentMethodRepoMock)
		uc := usecase.NewPaymentMethodUsecase(methods)
		methods.On("ListByUserID", mock.Anything, int64(7)).Return([]model.PaymentMethod{{ID: 1}}, nil).Once()
		methods.On("Create", mock.Anything, mock.MatchedBy(func(pm model.PaymentMethod) bool {
			return string(pm.Type) == typ && !pm.IsDefault
		})).Return(model.PaymentMethod{ID: 2}, nil).Once()

		_, err := uc.Create(context.Background(), 7, usecase.PaymentMethodInput{Type: typ})
		require.NoError(t, err, typ)
		methods.AssertExpectations(t)
	}
}

func TestPaymentMethodUsecase_OwnedOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("delete other user's", func(t *testing.T) {
		methods := new(paymentMethodRepoMock)
		methods.On("FindByID", mock.Anything, int64(4)).Return(model.PaymentMethod{ID: 4, UserID: 8}, nil).Once()
		uc := usecase.NewPaymentMethodUsecase(methods)
		assert.Equal(t, http.StatusForbidden, statusOf(uc.Delete(ctx, 7, 4)))
		methods.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("delete vanished", func(t *testing.T) {
		methods := new(paymentMethodRepoMock)
		methods.On("FindByID", mock.Anything, int64(4)).Return(model.PaymentMethod{ID: 4, UserID: 7}, nil).Once()
		methods.On("Delete", mock.Anything, int64(4)).Return(repo.ErrNotFound).Once()
		uc := usecase.NewPaymentMethodUsecase(methods)
		assert.Equal(t, http.StatusNotFound, statusOf(uc.Delete(ctx, 7, 4)))
	})

	t.Run("set default", func(t *testing.T) {
		methods := new(paymentMethodRepoMock)
		methods.On("FindByID", mock.Anything, int64(4)).Return(model.PaymentMethod{ID: 4, UserID: 7}, nil).Once()
		methods.On("SetDefault", mock.Anything, int64(7), int64(4)).Return(nil).Once()
		uc := usecase.NewPaymentMethodUsecase(methods)
		require.NoError(t, uc.SetDefault(ctx, 7, 4))
		methods.AssertExpectations(t)
	})

	t.Run("update card last4", func(t *testing.T) {
		methods := new(paymentMethodRepoMock)
		methods.On("FindByID", mock.Anything, int64(4)).
			Return(model.PaymentMethod{ID: 4, UserID: 7, Type: model.PaymentTypeCard, Last4: "4242"}, nil).Once()
		uc := usecase.NewPaymentMethodUsecase(methods)
		_, err := uc.Update(ctx, 7, 4, usecase.PaymentMethodPatch{Last4: strPtr("12")})
		assert.Equal(t, http.StatusBadRequest, statusOf(err))
	})
}
