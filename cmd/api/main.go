package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"shoestore/internal/cleanup"
	"shoestore/internal/config"
	"shoestore/internal/handler"
	"shoestore/internal/infra/cache"
	"shoestore/internal/infra/db"
	"shoestore/internal/infra/payment"
	"shoestore/internal/infra/queue"
	infraRepo "shoestore/internal/infra/repository"
	"shoestore/internal/infra/token"
	"shoestore/internal/logger"
	"shoestore/internal/middleware"
	"shoestore/internal/server"
	"shoestore/internal/usecase"
	"shoestore/internal/validator"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	//.envが無ければ環境変数だけで動く
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.IsDev()); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.L()

	if err := run(cfg, log); err != nil {
		log.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close(gormDB, log)

	if err := db.Migrate(gormDB); err != nil {
		return err
	}
	if err := db.Seed(gormDB); err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	//Repository（GORM実装）生成
	txm := infraRepo.NewTxManagerGorm(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	refRepo := infraRepo.NewReferenceGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	methodRepo := infraRepo.NewPaymentMethodGormRepository(gormDB)
	voucherRepo := infraRepo.NewVoucherGormRepository(gormDB)
	resetRepo := infraRepo.NewPasswordResetGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)

	//任意の外部サービス。interfaceはnilのまま渡す
	var (
		limiter usecase.RateLimiter
		kvCache usecase.Cache
		mailer  usecase.EmailPublisher
		gateway usecase.WalletGateway
	)
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
		if err != nil {
			return err
		}
		defer rc.Close()
		limiter, kvCache = rc, rc
	} else {
		log.Warn("REDIS_ADDR is empty: rate limit and autocomplete cache disabled")
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer := queue.NewEmailProducer(cfg.KafkaBrokers, cfg.KafkaEmailTopic)
		defer producer.Close()
		mailer = producer
	} else {
		log.Warn("KAFKA_BROKERS is empty: email notifications disabled")
	}
	if cfg.Momo.Enabled() {
		gateway = payment.NewMomoClient(cfg.Momo)
	} else {
		log.Warn("MOMO_* is not configured: wallet payment disabled")
	}

	issuer := token.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	authValidator := validator.NewAuthValidator(userRepo)

	//Usecase生成
	productUC := usecase.NewProductUsecase(txm, productRepo, refRepo, kvCache)
	cartUC := usecase.NewCartUsecase(txm, cartRepo, cartRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, orderItemRepo, addressRepo, methodRepo, userRepo, mailer, cfg.ShippingFee)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, orderRepo, orderItemRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	methodUC := usecase.NewPaymentMethodUsecase(methodRepo)
	voucherUC := usecase.NewVoucherUsecase(txm, voucherRepo, cartRepo, cartRepo, productRepo)
	authUC := usecase.NewAuthUsecase(userRepo, resetRepo, authValidator, issuer, limiter, mailer, cfg.FEURL)
	userAdminUC := usecase.NewUserAdminUsecase(txm, userRepo, authValidator)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)
	walletUC := usecase.NewWalletUsecase(txm, orderRepo, gateway)

	//Handler生成
	e := server.New(cfg, log)
	server.RegisterRoutes(e, server.Handlers{
		Health:        handler.NewHealthHandler(sqlDB),
		Auth:          handler.NewAuthHandler(authUC),
		Product:       handler.NewProductHandler(productUC),
		AdminProduct:  handler.NewAdminProductHandler(productUC),
		Cart:          handler.NewCartHandler(cartUC),
		Order:         handler.NewOrderHandler(orderUC),
		AdminOrder:    handler.NewAdminOrderHandler(adminOrderUC),
		Address:       handler.NewAddressHandler(addressUC),
		PaymentMethod: handler.NewPaymentMethodHandler(methodUC),
		Voucher:       handler.NewVoucherHandler(voucherUC),
		AdminUser:     handler.NewAdminUserHandler(userAdminUC, auditUC),
		Momo:          handler.NewMomoHandler(walletUC, cfg.FEURL),
	},
		middleware.AuthJWT(cfg.JWTSecret),
		middleware.TokenVersionGuard(userRepo),
	)

	//期限切れの再設定トークンを掃除
	sched := cleanup.NewScheduler(resetRepo, cleanup.DefaultInterval, cleanup.DefaultRetention, log)
	sched.Start(ctx)
	defer sched.Stop()

	//Server起動
	return server.Run(ctx, e, cfg.Port, log)
}
