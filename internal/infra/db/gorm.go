package db

import (
	"context"
	"fmt"
	"time"

	"shoestore/internal/config"
	"shoestore/internal/domain/model"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DSNを組み立てる（DATABASE_URLがあれば最優先）
func DSN(cfg config.Config) string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresSSLMode,
	)
}

// Connect はDBに接続して *gorm.DB を返す。プールはDBMaxOpenConnsまで
func Connect(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.IsDev() {
		level = gormlogger.Info
	}
	return Open(DSN(cfg), cfg.DBMaxOpenConns, level, log)
}

func Open(dsn string, maxOpen int, level gormlogger.LogLevel, log *zap.Logger) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if maxOpen < 1 {
		maxOpen = 10
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	log.Info("database connected", zap.Int("max_open_conns", maxOpen))
	return gdb, nil
}

func Close(gdb *gorm.DB, log *zap.Logger) {
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Error("get sql db", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("close db", zap.Error(err))
	}
}

// 参照されるテーブルから順に作る
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&model.User{},
		&model.PasswordResetToken{},
		&model.Category{},
		&model.Size{},
		&model.Product{},
		&model.ProductSize{},
		&model.Address{},
		&model.PaymentMethod{},
		&model.Cart{},
		&model.CartItem{},
		&model.Voucher{},
		&model.Order{},
		&model.OrderItem{},
		&model.VoucherRedemption{},
		&model.PaymentTransaction{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	)
}
