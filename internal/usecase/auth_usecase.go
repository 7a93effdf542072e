package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shoestore/internal/domain/model"
	"shoestore/internal/infra/queue"
	"shoestore/internal/logger"
	"shoestore/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	resetTokenTTL       = 30 * time.Minute
	forgotPasswordLimit = 60 * time.Second
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, in RegisterInput) error
	ValidateLogin(ctx context.Context, email string, password string) error
	ValidatePassword(password string) error
	ValidatePhone(phone string) error
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type LoginOutput struct {
	User        model.User `json:"user"`
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresAt   time.Time  `json:"expires_at"`
}

// PATCH /auth/me。パスワード変更は現在のパスワード必須
type ProfilePatch struct {
	FullName        *string `json:"full_name"`
	Phone           *string `json:"phone"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     string  `json:"new_password"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type AuthUsecase struct {
	users     repository.UserRepository
	resets    repository.PasswordResetRepository
	validator AuthValidator
	tokens    TokenIssuer
	limiter   RateLimiter
	mailer    EmailPublisher
	feURL     string
	now       func() time.Time
}

// limiter・mailerはnil可
func NewAuthUsecase(
	users repository.UserRepository,
	resets repository.PasswordResetRepository,
	validator AuthValidator,
	tokens TokenIssuer,
	limiter RateLimiter,
	mailer EmailPublisher,
	feURL string,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		resets:    resets,
		validator: validator,
		tokens:    tokens,
		limiter:   limiter,
		mailer:    mailer,
		feURL:     strings.TrimRight(feURL, "/"),
		now:       time.Now,
	}
}

// 会員登録（customer）
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	return createUser(ctx, u.users, u.validator, in, model.RoleCustomer)
}

func (u *AuthUsecase) Login(ctx context.Context, email, password string) (LoginOutput, error) {
	//入力検証
	if err := u.validator.ValidateLogin(ctx, email, password); err != nil {
		return LoginOutput{}, err
	}

	//ユーザー取得（存在しない/パスワード違いは同じ401）
	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if err != nil {
		return LoginOutput{}, dbError("user find", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return LoginOutput{}, NewHTTPError(http.StatusForbidden, "account disabled")
	}

	//last_login更新
	now := u.now()
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		logger.L().Warn("last_login update", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	token, exp, err := u.tokens.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		logger.L().Error("jwt issue", zap.Error(err))
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return LoginOutput{
		User:        *user,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   exp,
	}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, unauthorized()
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, unauthorized()
	}
	if err != nil {
		return model.User{}, dbError("user find", err)
	}
	if !user.IsActive {
		return model.User{}, forbidden()
	}
	return *user, nil
}

// 氏名・電話の変更、パスワード変更（変更したらtoken_versionを+1）
func (u *AuthUsecase) UpdateMe(ctx context.Context, userID int64, in ProfilePatch) (model.User, error) {
	user, err := u.Me(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return model.User{}, badRequest("full_name required")
		}
		user.FullName = name
	}
	if in.Phone != nil {
		if err := u.validator.ValidatePhone(*in.Phone); err != nil {
			return model.User{}, err
		}
		user.Phone = strings.TrimSpace(*in.Phone)
	}

	passwordChanged := false
	if in.NewPassword != "" {
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)) != nil {
			return model.User{}, badRequest("current password is incorrect")
		}
		if err := u.validator.ValidatePassword(in.NewPassword); err != nil {
			return model.User{}, err
		}
		hash, err := hashPassword(in.NewPassword)
		if err != nil {
			return model.User{}, err
		}
		user.PasswordHash = hash
		passwordChanged = true
	}

	if err := u.users.Update(ctx, &user); err != nil {
		return model.User{}, dbError("user update", err)
	}
	if passwordChanged {
		if err := u.users.IncrementTokenVersion(ctx, user.ID); err != nil {
			return model.User{}, dbError("token version", err)
		}
		user.TokenVersion++
	}
	return user, nil
}

// 再設定メールを送る。登録の有無はレスポンスで分からないようにする
func (u *AuthUsecase) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return badRequest("email required")
	}

	if u.limiter != nil {
		ok, err := u.limiter.TryAcquire(ctx, "forgot:"+email, forgotPasswordLimit)
		if err != nil {
			//Redisが落ちていても再設定は止めない
			logger.L().Warn("rate limit check", zap.Error(err))
		} else if !ok {
			return NewHTTPError(http.StatusTooManyRequests, "too many requests")
		}
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return dbError("user find", err)
	}
	if !user.IsActive {
		return nil
	}

	plain := newResetToken()
	now := u.now()
	if err := u.resets.Create(ctx, model.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hashToken(plain),
		ExpiresAt: now.Add(resetTokenTTL),
	}); err != nil {
		return dbError("reset token create", err)
	}

	if u.mailer == nil {
		logger.L().Warn("password reset mail skipped: no publisher", zap.Int64("user_id", user.ID))
		return nil
	}
	err = u.mailer.SendEmail(ctx, user.Email, queue.EmailMessage{
		To:       user.Email,
		Subject:  "Đặt lại mật khẩu",
		Template: "password_reset",
		Data: map[string]any{
			"name":        user.FullName,
			"ttl_minutes": int(resetTokenTTL / time.Minute),
			"reset_url":   u.feURL + "/reset-password?token=" + url.QueryEscape(plain),
		},
	})
	if err != nil {
		logger.L().Warn("password reset mail: publish", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	return nil
}

// トークンを消費して新しいパスワードを保存（既存のJWTは無効）
func (u *AuthUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return badRequest("token required")
	}
	if err := u.validator.ValidatePassword(newPassword); err != nil {
		return err
	}

	now := u.now()
	rt, err := u.resets.FindValidByHash(ctx, hashToken(token), now)
	if errors.Is(err, repository.ErrNotFound) {
		return badRequest("invalid or expired token")
	}
	if err != nil {
		return dbError("reset token find", err)
	}

	//先に使用済みにする（同時に2回来ても片方だけ通す）
	ok, err := u.resets.MarkConsumed(ctx, rt.ID, now)
	if err != nil {
		return dbError("reset token consume", err)
	}
	if !ok {
		return badRequest("invalid or expired token")
	}

	user, err := u.users.FindByID(ctx, rt.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return badRequest("invalid or expired token")
	}
	if err != nil {
		return dbError("user find", err)
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := u.users.Update(ctx, user); err != nil {
		return dbError("user update", err)
	}
	if err := u.users.IncrementTokenVersion(ctx, user.ID); err != nil {
		return dbError("token version", err)
	}
	return nil
}

// 会員登録とスタッフ作成で共通
func createUser(ctx context.Context, users repository.UserRepository, v AuthValidator, in RegisterInput, role model.Role) (model.User, error) {
	//入力検証（validatorに寄せる）
	if err := v.ValidateRegister(ctx, in); err != nil {
		return model.User{}, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	hash, err := hashPassword(in.Password)
	if err != nil {
		return model.User{}, err
	}

	user := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         role,
		TokenVersion: 0,
		IsActive:     true,
	}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return model.User{}, conflict("email already used")
		}
		return model.User{}, dbError("user create", err)
	}
	return *user, nil
}

func hashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		logger.L().Error("bcrypt", zap.Error(err))
		return "", NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return string(b), nil
}

// 平文トークン（UUID 2つ分のランダム）
func newResetToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

// DBにはSHA-256のhexだけ保存
func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
