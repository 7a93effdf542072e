package validator

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"regexp"
	"strings"

	"shoestore/internal/repository"
	"shoestore/internal/usecase"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcryptの上限
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 .-]{6,19}$`)

// よくある弱いパスワード
var weakPasswords = map[string]struct{}{
	"password":    {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"1234567890":  {},
	"qwertyuiop":  {},
	"11111111":    {},
	"admin123":    {},
}

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

// 会員登録・スタッフ作成の入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, in usecase.RegisterInput) error {
	email := strings.TrimSpace(in.Email)

	// 必須チェック
	if email == "" || in.Password == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "email and password required")
	}
	if !isEmailLike(email) {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	if err := v.ValidatePassword(in.Password); err != nil {
		return err
	}
	if strings.TrimSpace(in.FullName) == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "full_name required")
	}
	if in.Phone != "" && !phonePattern.MatchString(strings.TrimSpace(in.Phone)) {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid phone")
	}

	// email重複チェック（DBが必要）
	u, err := v.users.FindByEmail(ctx, email)
	if err == nil && u != nil {
		return usecase.NewHTTPError(http.StatusConflict, "email already used")
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	if email == "" || password == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "email and password required")
	}
	if !isEmailLike(email) {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	return nil
}

// 新しいパスワード（登録・再設定・変更で共通）
func (v *authValidator) ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return usecase.NewHTTPError(http.StatusBadRequest, "password must be at least 8 characters")
	}
	if len(password) > maxPasswordLen {
		return usecase.NewHTTPError(http.StatusBadRequest, "password too long")
	}
	if _, weak := weakPasswords[strings.ToLower(password)]; weak {
		return usecase.NewHTTPError(http.StatusBadRequest, "password too weak")
	}
	return nil
}

func (v *authValidator) ValidatePhone(phone string) error {
	if phone != "" && !phonePattern.MatchString(strings.TrimSpace(phone)) {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid phone")
	}
	return nil
}

// 簡易メール形式をチェック（表示名つきは不可）
func isEmailLike(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}
