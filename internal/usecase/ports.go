package usecase

import (
	"context"
	"time"

	"shoestore/internal/domain/model"
	"shoestore/internal/infra/payment"
	"shoestore/internal/infra/queue"
)

// Redis（infra/cache）で実装。nilなら無効
type RateLimiter interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Kafka（infra/queue）。送信はベストエフォート
type EmailPublisher interface {
	SendEmail(ctx context.Context, key string, msg queue.EmailMessage) error
}

type TokenIssuer interface {
	Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error)
}

// MoMo（infra/payment）
type WalletGateway interface {
	CreatePayment(ctx context.Context, in payment.CreateRequest) (payment.CreateResponse, error)
	VerifyCallback(cb payment.Callback) bool
}
