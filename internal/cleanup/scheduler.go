package cleanup

import (
	"context"
	"sync"
	"time"

	"shoestore/internal/repository"

	"go.uber.org/zap"
)

const (
	DefaultInterval = time.Hour
	// 使用済みトークンはしばらく残す（調査用）
	DefaultRetention = 24 * time.Hour
)

// パスワード再設定トークンの掃除を定期実行する
type Scheduler struct {
	resets    repository.PasswordResetRepository
	interval  time.Duration
	retention time.Duration
	log       *zap.Logger
	now       func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(resets repository.PasswordResetRepository, interval, retention time.Duration, log *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if retention < 0 {
		retention = DefaultRetention
	}
	return &Scheduler{
		resets:    resets,
		interval:  interval,
		retention: retention,
		log:       log,
		now:       time.Now,
	}
}

// 1回分。消した件数を返す
func (s *Scheduler) RunOnce(ctx context.Context) (int64, error) {
	now := s.now()
	n, err := s.resets.DeleteStale(ctx, now, now.Add(-s.retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("password reset tokens cleaned", zap.Int64("deleted", n))
	}
	return n, nil
}

// 二重にStartしても1本だけ動く
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx, s.done)
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.log.Error("cleanup password reset tokens", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ゴルーチンが終わるまで待つ
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
