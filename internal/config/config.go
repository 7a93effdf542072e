package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あればPOSTGRES_*より優先
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string
	DBMaxOpenConns   int // コネクションプール上限（10）

	JWTSecret      string        // JWT署名シークレット
	AccessTokenTTL time.Duration // アクセストークン有効期限

	GoEnv string // dev/prod
	FEURL string // フロントURL（CORS・再設定リンク）

	ShippingFee int64 // 送料（固定）

	// 空なら無効（レート制限・サジェストキャッシュなし）
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// 空ならメール通知なし
	KafkaBrokers    []string
	KafkaEmailTopic string

	Momo MomoConfig
}

// ウォレット決済（MoMo）。PartnerCodeが空なら無効
type MomoConfig struct {
	PartnerCode string
	AccessKey   string
	SecretKey   string
	Endpoint    string
	RedirectURL string
	IPNURL      string
}

func (m MomoConfig) Enabled() bool {
	return m.PartnerCode != "" && m.SecretKey != "" && m.Endpoint != ""
}

// 通知ワーカー（cmd/notifier）用
type NotifierConfig struct {
	GoEnv string

	KafkaBrokers    []string
	KafkaEmailTopic string
	KafkaGroupID    string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPSSL      bool

	TmplDir string
}

func (c Config) IsDev() bool {
	return isDev(c.GoEnv)
}

func (c NotifierConfig) IsDev() bool {
	return isDev(c.GoEnv)
}

func isDev(env string) bool {
	return env == "dev" || env == "development"
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: os.Getenv("PORT"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv: os.Getenv("GO_ENV"),
		FEURL: os.Getenv("FE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaEmailTopic: getenv("KAFKA_TOPIC_EMAIL", "email-notifications"),

		Momo: MomoConfig{
			PartnerCode: os.Getenv("MOMO_PARTNER_CODE"),
			AccessKey:   os.Getenv("MOMO_ACCESS_KEY"),
			SecretKey:   os.Getenv("MOMO_SECRET_KEY"),
			Endpoint:    os.Getenv("MOMO_ENDPOINT"),
			RedirectURL: os.Getenv("MOMO_REDIRECT_URL"),
			IPNURL:      os.Getenv("MOMO_IPN_URL"),
		},
	}

	var err error
	if cfg.PostgresPort, err = atoiDefault("POSTGRES_PORT", 5432); err != nil {
		return Config{}, err
	}
	if cfg.DBMaxOpenConns, err = atoiDefault("DB_MAX_OPEN_CONNS", 10); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = atoiDefault("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	fee, err := atoiDefault("SHIPPING_FEE", 0)
	if err != nil {
		return Config{}, err
	}
	cfg.ShippingFee = int64(fee)
	if cfg.AccessTokenTTL, err = durationDefault("ACCESS_TOKEN_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.DatabaseURL == "" {
		if cfg.PostgresUser == "" {
			return Config{}, fmt.Errorf("POSTGRES_USER is required")
		}
		if cfg.PostgresPassword == "" {
			return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
		}
		if cfg.PostgresDB == "" {
			return Config{}, fmt.Errorf("POSTGRES_DB is required")
		}
		if cfg.PostgresHost == "" {
			return Config{}, fmt.Errorf("POSTGRES_HOST is required")
		}
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.FEURL == "" {
		return Config{}, fmt.Errorf("FE_URL is required")
	}
	if cfg.ShippingFee < 0 {
		return Config{}, fmt.Errorf("SHIPPING_FEE must be >= 0")
	}
	if cfg.DBMaxOpenConns < 1 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be >= 1")
	}

	return cfg, nil
}

func LoadNotifier() (NotifierConfig, error) {
	cfg := NotifierConfig{
		GoEnv:           os.Getenv("GO_ENV"),
		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaEmailTopic: getenv("KAFKA_TOPIC_EMAIL", "email-notifications"),
		KafkaGroupID:    getenv("KAFKA_GROUP_ID", "shoestore-notifier"),
		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPUser:        os.Getenv("SMTP_USER"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:        os.Getenv("SMTP_FROM"),
		SMTPSSL:         os.Getenv("SMTP_SSL") != "false",
		TmplDir:         getenv("TMPL_DIR", "templates"),
	}

	var err error
	if cfg.SMTPPort, err = atoiDefault("SMTP_PORT", 465); err != nil {
		return NotifierConfig{}, err
	}

	if len(cfg.KafkaBrokers) == 0 {
		return NotifierConfig{}, fmt.Errorf("KAFKA_BROKERS is required")
	}
	if cfg.SMTPHost == "" {
		return NotifierConfig{}, fmt.Errorf("SMTP_HOST is required")
	}
	if cfg.SMTPFrom == "" {
		return NotifierConfig{}, fmt.Errorf("SMTP_FROM is required")
	}
	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

// カンマ区切り
func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
