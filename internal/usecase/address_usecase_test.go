package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"shoestore/internal/domain/model"
	repo "shoestore/internal/repository"
	"shoestore/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validAddressInput() usecase.AddressInput {
	return usecase.AddressInput{
		RecipientName: " Nguyen Van A ",
		Phone:         "0900000000",
		Line:          "12 Le Loi",
		Ward:          "Ben Nghe",
		District:      "1",
		City:          "HCMC",
	}
}

func TestAddressUsecase_Create_FirstIsDefault(t *testing.T) {
	addresses := new(addressRepoMock)
	uc := usecase.NewAddressUsecase(addresses)

	addresses.On("ListByUserID", mock.Anything, int64(7)).Return([]model.Address{}, nil).Once()
	addresses.On("Create", mock.Anything, mock.MatchedBy(func(a model.Address) bool {
		return a.UserID == 7 && a.IsDefault && a.RecipientName == "Nguyen Van A"
	})).Return(model.Address{ID: 1, UserID: 7, IsDefault: true}, nil).Once()

	got, err := uc.Create(context.Background(), 7, validAddressInput())
	require.NoError(t, err)
	assert.True(t, got.IsDefault)
	addresses.AssertExpectations(t)
}

func TestAddressUsecase_Create_SecondIsNotDefault(t *testing.T) {
	addresses := new(addressRepoMock)
	uc := usecase.NewAddressUsecase(addresses)

	addresses.On("ListByUserID", mock.Anything, int64(7)).Return([]model.Address{{ID: 1, UserID: 7, IsDefault: true}}, nil).Once()
	addresses.On("Create", mock.Anything, mock.MatchedBy(func(a model.Address) bool {
		return !a.IsDefault
	})).Return(model.Address{ID: 2, UserID: 7}, nil).Once()

	_, err := uc.Create(context.Background(), 7, validAddressInput())
	require.NoError(t, err)
	addresses.AssertExpectations(t)
}

func TestAddressUsecase_Create_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(in *usecase.AddressInput)
		msg    string
	}{
		{"no recipient", func(in *usecase.AddressInput) { in.RecipientName = "  " }, "recipient_name required"},
		{"no phone", func(in *usecase.AddressInput) { in.Phone = "" }, "phone required"},
		{"no line", func(in *usecase.AddressInput) { in.Line = "" }, "line required"},
		{"no city", func(in *usecase.AddressInput) { in.City = "" }, "city required"},
		{"long phone", func(in *usecase.AddressInput) { in.Phone = "0123456789012345678901234567890" }, "phone too long"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			addresses := new(addressRepoMock)
			uc := usecase.NewAddressUsecase(addresses)
			in := validAddressInput()
			tc.mutate(&in)

			_, err := uc.Create(context.Background(), 7, in)
			require.Error(t, err)
			he, ok := usecase.AsHTTPError(err)
			require.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, he.Status)
			assert.Equal(t, tc.msg, he.Message)
			addresses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAddressUsecase_Ownership(t *testing.T) {
	ctx := context.Background()

	t.Run("unauthenticated", func(t *testing.T) {
		uc := usecase.NewAddressUsecase(new(addressRepoMock))
		assert.Equal(t, http.StatusUnauthorized, statusOf(uc.Delete(ctx, 0, 1)))
	})

	t.Run("invalid id", func(t *testing.T) {
		uc := usecase.NewAddressUsecase(new(addressRepoMock))
		assert.Equal(t, http.StatusBadRequest, statusOf(uc.SetDefault(ctx, 7, 0)))
	})

	t.Run("not found", func(t *testing.T) {
		addresses := new(addressRepoMock)
		addresses.On("FindByID", mock.Anything, int64(3)).Return(model.Address{}, repo.ErrNotFound).Once()
		uc := usecase.NewAddressUsecase(addresses)
		assert.Equal(t, http.StatusNotFound, statusOf(uc.Delete(ctx, 7, 3)))
	})

	t.Run("someone else's", func(t *testing.T) {
		addresses := new(addressRepoMock)
		addresses.On("FindByID", mock.Anything, int64(3)).Return(model.Address{ID: 3, UserID: 8}, nil).Once()
		uc := usecase.NewAddressUsecase(addresses)
		_, err := uc.Update(ctx, 7, 3, usecase.AddressPatch{City: strPtr("Hanoi")})
		assert.Equal(t, http.StatusForbidden, statusOf(err))
		addresses.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("db error", func(t *testing.T) {
		addresses := new(addressRepoMock)
		addresses.On("FindByID", mock.Anything, int64(3)).Return(model.Address{}, errors.New("down")).Once()
		uc := usecase.NewAddressUsecase(addresses)
		assert.Equal(t, http.StatusInternalServerError, statusOf(uc.Delete(ctx, 7, 3)))
	})
}

func TestAddressUsecase_Update_PatchesOnlyGivenFields(t *testing.T) {
	addresses := new(addressRepoMock)
	uc := usecase.NewAddressUsecase(addresses)

	current := model.Address{ID: 3, UserID: 7, RecipientName: "A", Phone: "0900000000", Line: "1 Street", City: "HCMC"}
	addresses.On("FindByID", mock.Anything, int64(3)).Return(current, nil).Once()
	addresses.On("Update", mock.Anything, mock.MatchedBy(func(a model.Address) bool {
		return a.City == "Hanoi" && a.RecipientName == "A" && a.Line == "1 Street"
	})).Return(nil).Once()

	got, err := uc.Update(context.Background(), 7, 3, usecase.AddressPatch{City: strPtr(" Hanoi ")})
	require.NoError(t, err)
	assert.Equal(t, "Hanoi", got.City)

	//空にするとバリデーションで落ちる
	addresses.On("FindByID", mock.Anything, int64(3)).Return(current, nil).Once()
	_, err = uc.Update(context.Background(), 7, 3, usecase.AddressPatch{Line: strPtr("")})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	addresses.AssertExpectations(t)
}

func TestAddressUsecase_SetDefault(t *testing.T) {
	addresses := new(addressRepoMock)
	uc := usecase.NewAddressUsecase(addresses)

	addresses.On("FindByID", mock.Anything, int64(3)).Return(model.Address{ID: 3, UserID: 7}, nil).Once()
	addresses.On("SetDefault", mock.Anything, int64(7), int64(3)).Return(nil).Once()

	require.NoError(t, uc.SetDefault(context.Background(), 7, 3))
	addresses.AssertExpectations(t)
}
