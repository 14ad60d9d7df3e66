package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Finnhub  FinnhubConfig
	Auth     AuthConfig
	Policy   PolicyConfig
	Jobs     JobsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis quote-cache configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	QuoteTTL time.Duration
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers []string
	Topic   string
	Enabled bool
}

// FinnhubConfig holds market-data provider configuration
type FinnhubConfig struct {
	APIKey  string
	BaseURL string
	// Delay between per-ticker requests during batch refresh.
	// Free tier allows 60 requests/minute.
	RequestDelay time.Duration
}

// AuthConfig holds session token configuration
type AuthConfig struct {
	JWTSecret     string
	SessionMaxAge time.Duration
}

// PolicyConfig holds trading policy constants. Defaults mirror the
// behavior kids and parents already expect; change with care.
type PolicyConfig struct {
	DustThreshold decimal.Decimal // holdings at or below this share count are deleted
	MinimumBuy    decimal.Decimal // smallest purchase in dollars
	CashOutUnit   decimal.Decimal // cash-out amounts must be multiples of this
}

// JobsConfig holds scheduled job configuration
type JobsConfig struct {
	PriceRefreshInterval time.Duration
	SnapshotInterval     time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "stocksprout"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			QuoteTTL: getEnvDuration("REDIS_QUOTE_TTL", time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "ledger-events"),
			Enabled: getEnvBool("KAFKA_ENABLED", false),
		},
		Finnhub: FinnhubConfig{
			APIKey:       getEnv("FINNHUB_API_KEY", ""),
			BaseURL:      getEnv("FINNHUB_BASE_URL", "https://finnhub.io/api/v1"),
			RequestDelay: getEnvDuration("FINNHUB_REQUEST_DELAY", 250*time.Millisecond),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "change-me"),
			SessionMaxAge: getEnvDuration("SESSION_MAX_AGE", 7*24*time.Hour),
		},
		Policy: PolicyConfig{
			DustThreshold: getEnvDecimal("POLICY_DUST_THRESHOLD", "0.000001"),
			MinimumBuy:    getEnvDecimal("POLICY_MINIMUM_BUY", "5"),
			CashOutUnit:   getEnvDecimal("POLICY_CASHOUT_UNIT", "5"),
		},
		Jobs: JobsConfig{
			PriceRefreshInterval: getEnvDuration("PRICE_REFRESH_INTERVAL", time.Hour),
			SnapshotInterval:     getEnvDuration("SNAPSHOT_INTERVAL", 24*time.Hour),
		},
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvDecimal(key, defaultValue string) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	d, _ := decimal.NewFromString(defaultValue)
	return d
}
