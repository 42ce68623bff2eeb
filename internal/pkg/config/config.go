package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// - optional upstreams (calendar feed, rate provider, Kafka) are disabled when left empty
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	CORS     CORSConfig
	Log      LogConfig
	Calendar CalendarConfig
	Rates    RatesConfig
	Pricing  PricingConfig
	Payment  PaymentConfig
	Kafka    KafkaConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" default:"3000"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Content-Type,X-Request-ID"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type CalendarConfig struct {
	URL             string        `envconfig:"ICAL_URL"`
	RefreshInterval time.Duration `envconfig:"CALENDAR_REFRESH_INTERVAL" default:"4h"`
	FetchTimeout    time.Duration `envconfig:"CALENDAR_FETCH_TIMEOUT" default:"30s"`
}

type RatesConfig struct {
	APIKey       string        `envconfig:"PRICELABS_API_KEY"`
	ListingID    string        `envconfig:"PRICELABS_LISTING_ID" default:"19912038"`
	BaseURL      string        `envconfig:"PRICELABS_BASE_URL" default:"https://api.pricelabs.co"`
	SyncInterval time.Duration `envconfig:"RATE_SYNC_INTERVAL" default:"6h"`
	FetchTimeout time.Duration `envconfig:"RATE_FETCH_TIMEOUT" default:"30s"`
}

type PricingConfig struct {
	CleaningFeeCents int64 `envconfig:"CLEANING_FEE_CENTS" default:"0"`
}

type PaymentConfig struct {
	SecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	WebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	Currency      string `envconfig:"PAYMENT_CURRENCY" default:"usd"`
	ProductName   string `envconfig:"PAYMENT_PRODUCT_NAME" default:"Property Rental"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:3000"`
	APIURL        string `envconfig:"STRIPE_API_URL"`
}

type KafkaConfig struct {
	Brokers       []string      `envconfig:"KAFKA_BROKERS"`
	TopicPrefix   string        `envconfig:"KAFKA_TOPIC_PREFIX"`
	RelayInterval time.Duration `envconfig:"OUTBOX_RELAY_INTERVAL" default:"5s"`
	RelayBatch    int32         `envconfig:"OUTBOX_RELAY_BATCH" default:"50"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func (c PaymentConfig) SuccessURL() string {
	return c.PublicBaseURL + "/success?session_id={CHECKOUT_SESSION_ID}"
}

func (c PaymentConfig) CancelURL() string {
	return c.PublicBaseURL + "/cancel"
}

func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		Calendar: CalendarConfig{
			RefreshInterval: 4 * time.Hour,
			FetchTimeout:    2 * time.Second,
		},
		Rates: RatesConfig{
			ListingID:    "19912038",
			SyncInterval: 6 * time.Hour,
			FetchTimeout: 2 * time.Second,
		},
		Pricing: PricingConfig{
			CleaningFeeCents: 5000,
		},
		Payment: PaymentConfig{
			SecretKey:     "sk_test_dummy",
			WebhookSecret: "whsec_test",
			Currency:      "usd",
			ProductName:   "Property Rental",
			PublicBaseURL: "http://localhost:8889",
		},
		Kafka: KafkaConfig{
			RelayInterval: time.Second,
			RelayBatch:    10,
		},
	}
}
