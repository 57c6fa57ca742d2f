package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort string
	AppEnv   string
	LogLevel string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	PlatformFeeBps int64
	Currency       string

	MercadoPagoAccessToken   string
	MercadoPagoWebhookSecret string
	WebhookTolerance         time.Duration
	PaymentGatewayMock       bool
	CheckoutBaseURL          string
	NotificationURL          string

	PayoutProviderURL     string
	PayoutProviderToken   string
	PayoutProviderTimeout time.Duration
	PayoutGatewayMock     bool

	RedisAddr          string
	RedisStatusChannel string
	RedisStatusTTL     time.Duration

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	DynamoDBEndpoint   string
	AuditArchiveTable  string

	SentryDSN string
	Swagger   bool

	PayoutBatchCron      string
	PaymentReconcileCron string
	AuditExportCron      string
	JobTimeout           time.Duration
	JobBatchSize         int
}

// DSN is the gorm postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// LoadConfig reads the environment, after loading envFile when it exists.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		HTTPPort: v.GetString("HTTP_PORT"),
		AppEnv:   v.GetString("APP_ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),

		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSslMode:  v.GetString("DB_SSLMODE"),

		PlatformFeeBps: v.GetInt64("PLATFORM_FEE_BPS"),
		Currency:       strings.ToUpper(v.GetString("CURRENCY")),

		MercadoPagoAccessToken:   v.GetString("MERCADOPAGO_ACCESS_TOKEN"),
		MercadoPagoWebhookSecret: v.GetString("MERCADOPAGO_WEBHOOK_SECRET"),
		WebhookTolerance:         v.GetDuration("MERCADOPAGO_WEBHOOK_TOLERANCE"),
		PaymentGatewayMock:       v.GetBool("PAYMENT_GATEWAY_MOCK"),
		CheckoutBaseURL:          v.GetString("CHECKOUT_BASE_URL"),
		NotificationURL:          v.GetString("MERCADOPAGO_NOTIFICATION_URL"),

		PayoutProviderURL:     v.GetString("PAYOUT_PROVIDER_URL"),
		PayoutProviderToken:   v.GetString("PAYOUT_PROVIDER_TOKEN"),
		PayoutProviderTimeout: v.GetDuration("PAYOUT_PROVIDER_TIMEOUT"),
		PayoutGatewayMock:     v.GetBool("PAYOUT_GATEWAY_MOCK"),

		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisStatusChannel: v.GetString("REDIS_STATUS_CHANNEL"),
		RedisStatusTTL:     v.GetDuration("REDIS_STATUS_TTL"),

		AWSRegion:          v.GetString("AWS_REGION"),
		AWSAccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
		DynamoDBEndpoint:   v.GetString("DYNAMODB_ENDPOINT"),
		AuditArchiveTable:  v.GetString("AUDIT_ARCHIVE_TABLE"),

		SentryDSN: v.GetString("SENTRY_DSN"),
		Swagger:   v.GetBool("SWAGGER_ENABLED"),

		PayoutBatchCron:      v.GetString("PAYOUT_BATCH_CRON"),
		PaymentReconcileCron: v.GetString("PAYMENT_RECONCILE_CRON"),
		AuditExportCron:      v.GetString("AUDIT_EXPORT_CRON"),
		JobTimeout:           v.GetDuration("JOB_TIMEOUT"),
		JobBatchSize:         v.GetInt("JOB_BATCH_SIZE"),
	}
	return cfg, cfg.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "booking")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("PLATFORM_FEE_BPS", 1500)
	v.SetDefault("CURRENCY", "BRL")
	v.SetDefault("MERCADOPAGO_WEBHOOK_TOLERANCE", "5m")
	v.SetDefault("PAYMENT_GATEWAY_MOCK", true)
	v.SetDefault("CHECKOUT_BASE_URL", "http://localhost:8080/checkout")
	v.SetDefault("PAYOUT_PROVIDER_TIMEOUT", "10s")
	v.SetDefault("PAYOUT_GATEWAY_MOCK", true)
	v.SetDefault("REDIS_STATUS_CHANNEL", "booking.order-status")
	v.SetDefault("REDIS_STATUS_TTL", "24h")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AUDIT_ARCHIVE_TABLE", "audit_entries")
	v.SetDefault("SWAGGER_ENABLED", true)
	v.SetDefault("PAYOUT_BATCH_CRON", "0 0 3 * * *")
	v.SetDefault("PAYMENT_RECONCILE_CRON", "0 */5 * * * *")
	v.SetDefault("AUDIT_EXPORT_CRON", "")
	v.SetDefault("JOB_TIMEOUT", "2m")
	v.SetDefault("JOB_BATCH_SIZE", 100)
}

// Validate rejects settings that would only fail later at runtime.
func (c Config) Validate() error {
	var problems []error
	if c.PlatformFeeBps < 0 || c.PlatformFeeBps > 10000 {
		problems = append(problems, fmt.Errorf("PLATFORM_FEE_BPS must be within 0..10000, got %d", c.PlatformFeeBps))
	}
	if len(c.Currency) != 3 {
		problems = append(problems, fmt.Errorf("CURRENCY must be an ISO 4217 code, got %q", c.Currency))
	}
	if !c.PaymentGatewayMock && c.MercadoPagoAccessToken == "" {
		problems = append(problems, errors.New("MERCADOPAGO_ACCESS_TOKEN is required unless PAYMENT_GATEWAY_MOCK is set"))
	}
	if !c.PayoutGatewayMock && c.PayoutProviderURL == "" {
		problems = append(problems, errors.New("PAYOUT_PROVIDER_URL is required unless PAYOUT_GATEWAY_MOCK is set"))
	}
	if !c.PaymentGatewayMock && c.MercadoPagoWebhookSecret == "" {
		problems = append(problems, errors.New("MERCADOPAGO_WEBHOOK_SECRET is required unless PAYMENT_GATEWAY_MOCK is set"))
	}
	if c.JobBatchSize <= 0 {
		problems = append(problems, fmt.Errorf("JOB_BATCH_SIZE must be positive, got %d", c.JobBatchSize))
	}
	return errors.Join(problems...)
}
