package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Module provides the application Config and the payment method mapping.
var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewPaymentMethodsHolder),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	NodeID      int64

	SeedMainCompany bool

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Xendit    XenditConfig
	Reconcile ReconcileConfig
	Redis     RedisConfig
}

// XenditConfig configures the inbound payment processor callbacks.
type XenditConfig struct {
	CallbackToken      string
	InternalAPIBaseURL string
}

// ReconcileConfig tunes the ledger reconciliation unit of work.
type ReconcileConfig struct {
	Timeout        time.Duration
	RequireAccount bool
}

// RedisConfig configures the optional processed-event cache.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	ProcessedTTL time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "bukukas"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		NodeID:            int64(getenvInt("SNOWFLAKE_NODE_ID", 1)),
		SeedMainCompany:   getenvBool("SEED_MAIN_COMPANY", false),
		OTLPEndpoint:      getenv("OTLP_ENDPOINT", "localhost:4317"),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "bukukas"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),
		Xendit: XenditConfig{
			CallbackToken:      strings.TrimSpace(getenv("XENDIT_CALLBACK_TOKEN", "")),
			InternalAPIBaseURL: strings.TrimRight(strings.TrimSpace(getenv("INTERNAL_API_BASE_URL", "")), "/"),
		},
		Reconcile: ReconcileConfig{
			Timeout:        getenvDuration("RECONCILE_TIMEOUT", 10*time.Second),
			RequireAccount: getenvBool("RECONCILE_REQUIRE_ACCOUNT", false),
		},
		Redis: RedisConfig{
			Addr:         strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password:     getenv("REDIS_PASSWORD", ""),
			DB:           getenvInt("REDIS_DB", 0),
			ProcessedTTL: getenvDuration("REDIS_PROCESSED_TTL", 72*time.Hour),
		},
	}

	return cfg
}

// IsProduction reports whether the service runs in production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
