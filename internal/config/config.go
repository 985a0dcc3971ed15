package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"meridian/internal/database"
	"meridian/internal/messaging"
	"meridian/internal/store"

	"github.com/joho/godotenv"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	MetricsEnabled bool

	Store         StoreConfig
	Database      database.Config
	Valkey        store.ValkeyConfig
	NATS          messaging.Config
	Elasticsearch ElasticsearchConfig
	Checkout      CheckoutConfig
	Sessions      SessionConfig
}

// StoreConfig выбирает хранилище для избранного, бронирований и событий
type StoreConfig struct {
	Backend   string // memory | valkey | postgres
	KeyPrefix string
}

// CheckoutConfig содержит параметры оформления бронирования
type CheckoutConfig struct {
	SettleDelay time.Duration
	DeckSeed    int64 // 0 = сид от текущего времени
}

// SessionConfig содержит параметры очистки брошенных сессий
type SessionConfig struct {
	IdleTimeout  time.Duration
	ReapInterval time.Duration
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	// .env не обязателен, переменные окружения имеют приоритет
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),

		Store: StoreConfig{
			Backend:   getEnv("STORE_BACKEND", "memory"),
			KeyPrefix: getEnv("STORE_KEY_PREFIX", "meridian_"),
		},

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "meridian"),
			Password:           getEnv("DB_PASSWORD", "meridian123"),
			DBName:             getEnv("DB_NAME", "meridian"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		Valkey: store.ValkeyConfig{
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: os.Getenv("VALKEY_PASSWORD"),
			DB:       getEnvInt("VALKEY_DB", 0),
		},

		NATS: messaging.Config{
			Enabled:   getEnvBool("NATS_ENABLED", false),
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "meridian"),
			ClientID:  getEnv("NATS_CLIENT_ID", "meridian-api"),
			Subject:   getEnv("NATS_SUBJECT", "analytics.events"),
		},

		Elasticsearch: LoadElasticsearchConfig(),

		Checkout: CheckoutConfig{
			SettleDelay: time.Duration(getEnvInt("PAYMENT_SETTLE_DELAY_MS", 2000)) * time.Millisecond,
			DeckSeed:    int64(getEnvInt("DECK_SEED", 0)),
		},

		Sessions: SessionConfig{
			IdleTimeout:  time.Duration(getEnvInt("SESSION_IDLE_TIMEOUT_MIN", 30)) * time.Minute,
			ReapInterval: time.Duration(getEnvInt("SESSION_REAP_INTERVAL_SEC", 60)) * time.Second,
		},
	}
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool получает логическое значение переменной окружения
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
