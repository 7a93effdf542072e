package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"shoestore/internal/domain/model"
	"shoestore/internal/repository"
)

type AddressInput struct {
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	Line          string `json:"line"`
	Ward          string `json:"ward"`
	District      string `json:"district"`
	City          string `json:"city"`
}

// PATCH用。nilは変更しない
type AddressPatch struct {
	RecipientName *string `json:"recipient_name"`
	Phone         *string `json:"phone"`
	Line          *string `json:"line"`
	Ward          *string `json:"ward"`
	District      *string `json:"district"`
	City          *string `json:"city"`
}

type AddressUsecase struct {
	addresses repository.AddressRepository
}

func NewAddressUsecase(addresses repository.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addresses: addresses}
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]model.Address, error) {
	if userID <= 0 {
		return nil, unauthorized()
	}

	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, dbError("address list", err)
	}
	return list, nil
}

// 最初の1件は自動でデフォルト
func (u *AddressUsecase) Create(ctx context.Context, userID int64, req AddressInput) (model.Address, error) {
	if userID <= 0 {
		return model.Address{}, unauthorized()
	}

	a := model.Address{
		UserID:        userID,
		RecipientName: strings.TrimSpace(req.RecipientName),
		Phone:         strings.TrimSpace(req.Phone),
		Line:          strings.TrimSpace(req.Line),
		Ward:          strings.TrimSpace(req.Ward),
		District:      strings.TrimSpace(req.District),
		City:          strings.TrimSpace(req.City),
	}
	//入力チェック
	if err := validateAddress(a); err != nil {
		return model.Address{}, err
	}

	existing, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return model.Address{}, dbError("address list", err)
	}
	now := time.Now()
	a.IsDefault = len(existing) == 0
	a.CreatedAt = now
	a.UpdatedAt = now

	created, err := u.addresses.Create(ctx, a)
	if err != nil {
		return model.Address{}, dbError("address create", err)
	}
	return created, nil
}

func (u *AddressUsecase) Update(ctx context.Context, userID int64, addressID int64, req AddressPatch) (model.Address, error) {
	a, err := u.owned(ctx, userID, addressID)
	if err != nil {
		return model.Address{}, err
	}

	patchString(&a.RecipientName, req.RecipientName)
	patchString(&a.Phone, req.Phone)
	patchString(&a.Line, req.Line)
	patchString(&a.Ward, req.Ward)
	patchString(&a.District, req.District)
	patchString(&a.City, req.City)
	if err := validateAddress(a); err != nil {
		return model.Address{}, err
	}
	a.UpdatedAt = time.Now()

	if err := u.addresses.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Address{}, notFound()
		}
		return model.Address{}, dbError("address update", err)
	}
	return a, nil
}

func (u *AddressUsecase) Delete(ctx context.Context, userID int64, addressID int64) error {
	if _, err := u.owned(ctx, userID, addressID); err != nil {
		return err
	}

	if err := u.addresses.Delete(ctx, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound()
		}
		return dbError("address delete", err)
	}
	return nil
}

func (u *AddressUsecase) SetDefault(ctx context.Context, userID int64, addressID int64) error {
	if _, err := u.owned(ctx, userID, addressID); err != nil {
		return err
	}

	//user内でdefaultは1つ
	if err := u.addresses.SetDefault(ctx, userID, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound()
		}
		return dbError("address set default", err)
	}
	return nil
}

// 存在確認＋所有チェック（他人のものは403）
func (u *AddressUsecase) owned(ctx context.Context, userID, addressID int64) (model.Address, error) {
	if userID <= 0 {
		return model.Address{}, unauthorized()
	}
	if addressID <= 0 {
		return model.Address{}, badRequest("invalid id")
	}

	a, err := u.addresses.FindByID(ctx, addressID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Address{}, notFound()
	}
	if err != nil {
		return model.Address{}, dbError("address find", err)
	}
	if a.UserID != userID {
		return model.Address{}, forbidden()
	}
	return a, nil
}

func validateAddress(a model.Address) error {
	switch {
	case a.RecipientName == "":
		return badRequest("recipient_name required")
	case a.Phone == "":
		return badRequest("phone required")
	case a.Line == "":
		return badRequest("line required")
	case a.City == "":
		return badRequest("city required")
	}
	if len(a.Phone) > 30 {
		return badRequest("phone too long")
	}
	return nil
}

func patchString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
