package repository

import (
	"context"

	"shoestore/internal/domain/model"
)

// 管理画面のユーザー一覧
type UserListFilter struct {
	Q      string
	Role   *model.Role
	Limit  int
	Offset int
}

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//メールからユーザーを一件取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ユーザー情報の更新=>アクティブかどうか・ロールの変更・最後のログイン更新など
	Update(ctx context.Context, user *model.User) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID int64) error
	List(ctx context.Context, f UserListFilter) ([]model.User, int64, error)
	Delete(ctx context.Context, userID int64) error
}
