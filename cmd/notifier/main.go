package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"shoestore/internal/config"
	"shoestore/internal/infra/mail"
	"shoestore/internal/infra/queue"
	"shoestore/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Kafkaのメール通知を読んでSMTPで送るワーカー
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadNotifier()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.IsDev()); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sender := mail.NewSender(cfg)
	consumer := queue.NewEmailConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.KafkaEmailTopic, sender, log)
	defer func() {
		if err := consumer.Close(); err != nil {
			log.Error("close consumer", zap.Error(err))
		}
	}()

	log.Info("notifier started",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaEmailTopic),
		zap.String("group_id", cfg.KafkaGroupID),
	)
	if err := consumer.Run(ctx); err != nil {
		log.Error("consumer stopped", zap.Error(err))
	}
	log.Info("notifier stopped")
}
