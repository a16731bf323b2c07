package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/srgjo27/space_booking/internal/platform/database"
)

type Config struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// Store selects postgres or memory.
	Store string `envconfig:"STORE" default:"postgres"`
	// SeedAssetIDs registers assets with the memory store.
	SeedAssetIDs []string `envconfig:"SEED_ASSET_IDS"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"space_booking"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMigrate  bool   `envconfig:"DB_MIGRATE" default:"true"`

	// Redis is optional; an empty host disables the slot cache.
	RedisHost     string        `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     string        `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SlotCacheTTL  time.Duration `envconfig:"SLOT_CACHE_TTL" default:"30s"`

	// RabbitMQ is optional; an empty URL disables events.
	RabbitURL       string `envconfig:"RABBIT_URL"`
	BookingExchange string `envconfig:"BOOKING_EXCHANGE" default:"booking.exchange"`
	PaymentExchange string `envconfig:"PAYMENT_EXCHANGE" default:"payment.exchange"`
	PaymentQueue    string `envconfig:"BOOKING_PAYMENT_QUEUE" default:"booking.payment.q"`

	ScheduleTimezone  string        `envconfig:"SCHEDULE_TIMEZONE" default:"UTC"`
	BookingHoldTTL    time.Duration `envconfig:"BOOKING_HOLD_TTL" default:"0"`
	HoldSweepInterval time.Duration `envconfig:"HOLD_SWEEP_INTERVAL" default:"1m"`
	// BookingConfirmSync creates bookings confirmed when payment is settled upstream.
	BookingConfirmSync bool `envconfig:"BOOKING_CONFIRM_SYNC" default:"false"`
	// SystemActorID is recorded as updated_by for automatic transitions.
	SystemActorID string `envconfig:"SYSTEM_ACTOR_ID" default:"00000000-0000-0000-0000-000000000001"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads an optional .env file and then the process environment.
func Load(envFile string) (Config, error) {
	var cfg Config
	_ = godotenv.Load(envFile)
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if cfg.Store != "postgres" && cfg.Store != "memory" {
		return cfg, fmt.Errorf("load config: STORE must be postgres or memory, got %q", cfg.Store)
	}
	if _, err := time.LoadLocation(cfg.ScheduleTimezone); err != nil {
		return cfg, fmt.Errorf("load config: SCHEDULE_TIMEZONE: %w", err)
	}
	return cfg, nil
}

func (c Config) Database() database.Config {
	return database.Config{
		Host:            c.DBHost,
		Port:            c.DBPort,
		User:            c.DBUser,
		Password:        c.DBPassword,
		DBName:          c.DBName,
		SSLMode:         c.DBSSLMode,
		MaxOpenConns:    25,
		MaxIdleConns:    25,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

func (c Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ScheduleTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Fields renders the non-secret settings for a startup log line.
func (c Config) Fields() []zap.Field {
	return []zap.Field{
		zap.String("http_addr", c.HTTPAddr),
		zap.String("store", c.Store),
		zap.String("db_host", c.DBHost),
		zap.String("redis_addr", c.RedisAddr()),
		zap.Bool("events_enabled", c.RabbitURL != ""),
		zap.String("schedule_timezone", c.ScheduleTimezone),
		zap.Duration("booking_hold_ttl", c.BookingHoldTTL),
		zap.Bool("booking_confirm_sync", c.BookingConfirmSync),
	}
}
