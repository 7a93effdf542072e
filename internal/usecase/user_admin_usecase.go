package usecase

import (
	"context"
	"errors"
	"strings"

	"shoestore/internal/domain/model"
	repo "shoestore/internal/repository"
)

type UserListOutput struct {
	Items []model.User `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// PATCH /admin/users/:id
type UserPatch struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
}

// 管理者によるユーザー・スタッフ管理
type UserAdminUsecase struct {
	tx        repo.TransactionManager
	users     repo.UserRepository
	validator AuthValidator
}

func NewUserAdminUsecase(tx repo.TransactionManager, users repo.UserRepository, validator AuthValidator) *UserAdminUsecase {
	return &UserAdminUsecase{tx: tx, users: users, validator: validator}
}

func (u *UserAdminUsecase) List(ctx context.Context, q, role string, page, limit int) (UserListOutput, error) {
	page, limit = normalizePage(page, limit)

	f := repo.UserListFilter{
		Q:      strings.TrimSpace(q),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if role = strings.ToLower(strings.TrimSpace(role)); role != "" {
		r := model.Role(role)
		if !r.Valid() {
			return UserListOutput{}, badRequest("invalid role")
		}
		f.Role = &r
	}

	users, total, err := u.users.List(ctx, f)
	if err != nil {
		return UserListOutput{}, dbError("user list", err)
	}
	return UserListOutput{Items: users, Total: total, Page: page, Limit: limit}, nil
}

// ロール・有効フラグを変えたらtoken_versionを+1（古いJWTを無効化）
func (u *UserAdminUsecase) Update(ctx context.Context, actorUserID, targetUserID int64, in UserPatch) (model.User, error) {
	if actorUserID <= 0 {
		return model.User{}, unauthorized()
	}
	if targetUserID <= 0 {
		return model.User{}, badRequest("invalid id")
	}

	var out model.User
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByID(ctx, targetUserID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound()
		}
		if err != nil {
			return dbError("user find", err)
		}
		before := map[string]interface{}{"role": user.Role, "is_active": user.IsActive}

		revoke := false
		if in.Role != nil {
			role := model.Role(strings.ToLower(strings.TrimSpace(*in.Role)))
			if !role.Valid() {
				return badRequest("invalid role")
			}
			if role != user.Role {
				//自分の権限は落とせない
				if targetUserID == actorUserID {
					return badRequest("cannot change own role")
				}
				user.Role = role
				revoke = true
			}
		}
		if in.IsActive != nil && *in.IsActive != user.IsActive {
			if targetUserID == actorUserID {
				return badRequest("cannot deactivate yourself")
			}
			user.IsActive = *in.IsActive
			revoke = true
		}
		if in.FullName != nil {
			name := strings.TrimSpace(*in.FullName)
			if name == "" {
				return badRequest("full_name required")
			}
			user.FullName = name
		}
		if in.Phone != nil {
			if err := u.validator.ValidatePhone(*in.Phone); err != nil {
				return err
			}
			user.Phone = strings.TrimSpace(*in.Phone)
		}

		if err := r.Users().Update(ctx, user); err != nil {
			return dbError("user update", err)
		}
		if revoke {
			if err := r.Users().IncrementTokenVersion(ctx, user.ID); err != nil {
				return dbError("token version", err)
			}
			user.TokenVersion++
		}

		out = *user
		return writeAudit(ctx, r.AuditLogs(), actorUserID, model.AuditActionUpdateUser, model.AuditResourceUser, user.ID,
			before,
			map[string]interface{}{"role": user.Role, "is_active": user.IsActive},
		)
	})
	if err != nil {
		return model.User{}, txError("user update", err)
	}
	return out, nil
}

func (u *UserAdminUsecase) Delete(ctx context.Context, actorUserID, targetUserID int64) error {
	if actorUserID <= 0 {
		return unauthorized()
	}
	if targetUserID <= 0 {
		return badRequest("invalid id")
	}
	if targetUserID == actorUserID {
		return badRequest("cannot delete yourself")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByID(ctx, targetUserID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound()
		}
		if err != nil {
			return dbError("user find", err)
		}
		if err := r.Users().Delete(ctx, targetUserID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound()
			}
			return dbError("user delete", err)
		}
		return writeAudit(ctx, r.AuditLogs(), actorUserID, model.AuditActionDeleteUser, model.AuditResourceUser, targetUserID,
			map[string]interface{}{"email": user.Email, "role": user.Role},
			nil,
		)
	})
	return txError("user delete", err)
}

// token_versionを上げて発行済みのJWTを全部無効にする
func (u *UserAdminUsecase) ForceLogout(ctx context.Context, actorUserID, targetUserID int64) error {
	if actorUserID <= 0 {
		return unauthorized()
	}
	if targetUserID <= 0 {
		return badRequest("invalid id")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Users().FindByID(ctx, targetUserID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound()
			}
			return dbError("user find", err)
		}
		if err := r.Users().IncrementTokenVersion(ctx, targetUserID); err != nil {
			return dbError("token version", err)
		}
		return writeAudit(ctx, r.AuditLogs(), actorUserID, model.AuditActionForceLogout, model.AuditResourceUser, targetUserID, nil, nil)
	})
	return txError("force logout", err)
}

// GET /admin/staff
func (u *UserAdminUsecase) ListStaff(ctx context.Context) ([]model.User, error) {
	role := model.RoleStaff
	users, _, err := u.users.List(ctx, repo.UserListFilter{Role: &role, Limit: 200})
	if err != nil {
		return nil, dbError("staff list", err)
	}
	return users, nil
}

// POST /admin/staff
func (u *UserAdminUsecase) CreateStaff(ctx context.Context, actorUserID int64, in RegisterInput) (model.User, error) {
	if actorUserID <= 0 {
		return model.User{}, unauthorized()
	}
	return createUser(ctx, u.users, u.validator, in, model.RoleStaff)
}
