package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"shoestore/internal/domain/model"
	repo "shoestore/internal/repository"
)

type PaymentMethodInput struct {
	Type       string `json:"type"`
	Brand      string `json:"brand"`
	HolderName string `json:"holder_name"`
	//カード番号は下4桁だけ受け取る
	Last4 string `json:"last4"`
}

type PaymentMethodPatch struct {
	Brand      *string `json:"brand"`
	HolderName *string `json:"holder_name"`
	Last4      *string `json:"last4"`
}

// /payments（保存済み支払い方法）
type PaymentMethodUsecase struct {
	methods repo.PaymentMethodRepository
}

func NewPaymentMethodUsecase(methods repo.PaymentMethodRepository) *PaymentMethodUsecase {
	return &PaymentMethodUsecase{methods: methods}
}

func (u *PaymentMethodUsecase) List(ctx context.Context, userID int64) ([]model.PaymentMethod, error) {
	if userID <= 0 {
		return nil, unauthorized()
	}
	list, err := u.methods.ListByUserID(ctx, userID)
	if err != nil {
		return nil, dbError("payment method list", err)
	}
	return list, nil
}

func (u *PaymentMethodUsecase) Create(ctx context.Context, userID int64, in PaymentMethodInput) (model.PaymentMethod, error) {
	if userID <= 0 {
		return model.PaymentMethod{}, unauthorized()
	}

	pm := model.PaymentMethod{
		UserID:     userID,
		Type:       model.PaymentType(strings.ToUpper(strings.TrimSpace(in.Type))),
		Brand:      strings.TrimSpace(in.Brand),
		HolderName: strings.TrimSpace(in.HolderName),
		Last4:      strings.TrimSpace(in.Last4),
	}
	if err := validatePaymentMethod(pm); err != nil {
		return model.PaymentMethod{}, err
	}

	existing, err := u.methods.ListByUserID(ctx, userID)
	if err != nil {
		return model.PaymentMethod{}, dbError("payment method list", err)
	}
	now := time.Now()
	pm.IsDefault = len(existing) == 0
	pm.CreatedAt = now
	pm.UpdatedAt = now

	created, err := u.methods.Create(ctx, pm)
	if err != nil {
		return model.PaymentMethod{}, dbError("payment method create", err)
	}
	return created, nil
}

func (u *PaymentMethodUsecase) Update(ctx context.Context, userID, id int64, in PaymentMethodPatch) (model.PaymentMethod, error) {
	pm, err := u.owned(ctx, userID, id)
	if err != nil {
		return model.PaymentMethod{}, err
	}

	patchString(&pm.Brand, in.Brand)
	patchString(&pm.HolderName, in.HolderName)
	patchString(&pm.Last4, in.Last4)
	if err := validatePaymentMethod(pm); err != nil {
		return model.PaymentMethod{}, err
	}
	pm.UpdatedAt = time.Now()

	if err := u.methods.Update(ctx, pm); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.PaymentMethod{}, notFound()
		}
		return model.PaymentMethod{}, dbError("payment method update", err)
	}
	return pm, nil
}

func (u *PaymentMethodUsecase) Delete(ctx context.Context, userID, id int64) error {
	if _, err := u.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := u.methods.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound()
		}
		return dbError("payment method delete", err)
	}
	return nil
}

func (u *PaymentMethodUsecase) SetDefault(ctx context.Context, userID, id int64) error {
	if _, err := u.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := u.methods.SetDefault(ctx, userID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound()
		}
		return dbError("payment method set default", err)
	}
	return nil
}

func (u *PaymentMethodUsecase) owned(ctx context.Context, userID, id int64) (model.PaymentMethod, error) {
	if userID <= 0 {
		return model.PaymentMethod{}, unauthorized()
	}
	if id <= 0 {
		return model.PaymentMethod{}, badRequest("invalid id")
	}

	pm, err := u.methods.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.PaymentMethod{}, notFound()
	}
	if err != nil {
		return model.PaymentMethod{}, dbError("payment method find", err)
	}
	if pm.UserID != userID {
		return model.PaymentMethod{}, forbidden()
	}
	return pm, nil
}

func validatePaymentMethod(pm model.PaymentMethod) error {
	if !pm.Type.Valid() {
		return badRequest("invalid type")
	}
	if pm.Type == model.PaymentTypeCard {
		if len(pm.Last4) != 4 || strings.IndexFunc(pm.Last4, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
			return badRequest("last4 must be 4 digits")
		}
	} else if pm.Last4 != "" && len(pm.Last4) > 4 {
		return badRequest("last4 too long")
	}
	return nil
}
