package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        string
	Env         string
	CORSOrigins string
}

// DBConfig holds database configuration
type DBConfig struct {
	URL             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from the parts
func (c *DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

type LogConfig struct {
	Level string
}

// PricingConfig controls the price-decay scheduler
type PricingConfig struct {
	Enabled bool
	Cron    string
}

// AIConfig holds the image-analysis API settings. An empty APIKey selects the mock analyzer.
type AIConfig struct {
	APIKey   string
	APIURL   string
	Model    string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// BlockchainConfig holds the JSON-RPC endpoint and contract addresses
type BlockchainConfig struct {
	Mode            string // "rpc" or "demo"
	RPCURL          string
	ChainID         int64
	EscrowContract  string
	CarbonContract  string
	OperatorAddress string
	Timeout         time.Duration
}

type RedisConfig struct {
	URL string
}

// SeedConfig is the first administrator created on an empty database
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

type RateLimitConfig struct {
	AuthPerSecond int
	AuthBurst     int
}

// Config holds all configuration
type Config struct {
	ServiceName string
	Server      ServerConfig
	DB          DBConfig
	JWT         JWTConfig
	Log         LogConfig
	Pricing     PricingConfig
	AI          AIConfig
	Blockchain  BlockchainConfig
	Redis       RedisConfig
	RateLimit   RateLimitConfig
	Seed        SeedConfig
}

// Load reads .env (optional) and the process environment
func Load(serviceName string) *Config {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		ServiceName: serviceName,
		Server: ServerConfig{
			Port:        getEnv("PORT", "3000"),
			Env:         getEnv("APP_ENV", "development"),
			CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		},
		DB: DBConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "stocky"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "stocky-dev-secret-change-me"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Pricing: PricingConfig{
			Enabled: getEnvAsBool("PRICING_ENABLED", true),
			Cron:    getEnv("PRICING_CRON", "0 * * * *"),
		},
		AI: AIConfig{
			APIKey:   getEnv("AI_API_KEY", ""),
			APIURL:   getEnv("AI_API_URL", "https://api.openai.com/v1/chat/completions"),
			Model:    getEnv("AI_MODEL", "gpt-4o-mini"),
			Timeout:  getEnvAsDuration("AI_TIMEOUT", 30*time.Second),
			CacheTTL: getEnvAsDuration("AI_CACHE_TTL", 24*time.Hour),
		},
		Blockchain: BlockchainConfig{
			Mode:            strings.ToLower(getEnv("BLOCKCHAIN_MODE", "demo")),
			RPCURL:          getEnv("BLOCKCHAIN_RPC_URL", ""),
			ChainID:         int64(getEnvAsInt("BLOCKCHAIN_CHAIN_ID", 296)), // Hedera testnet
			EscrowContract:  getEnv("ESCROW_CONTRACT", ""),
			CarbonContract:  getEnv("CARBON_CONTRACT", ""),
			OperatorAddress: getEnv("OPERATOR_ADDRESS", ""),
			Timeout:         getEnvAsDuration("BLOCKCHAIN_TIMEOUT", 20*time.Second),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		RateLimit: RateLimitConfig{
			AuthPerSecond: getEnvAsInt("AUTH_RATE_PER_SECOND", 5),
			AuthBurst:     getEnvAsInt("AUTH_RATE_BURST", 10),
		},
		Seed: SeedConfig{
			AdminEmail:    getEnv("ADMIN_EMAIL", "admin@stocky.local"),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		},
	}
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// LogFields returns the non-secret settings for the startup log line
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("port", c.Server.Port),
		zap.String("db_host", c.DB.Host),
		zap.String("db_name", c.DB.Name),
		zap.Bool("pricing_enabled", c.Pricing.Enabled),
		zap.String("pricing_cron", c.Pricing.Cron),
		zap.Bool("ai_api_configured", c.AI.APIKey != ""),
		zap.String("blockchain_mode", c.Blockchain.Mode),
		zap.Bool("redis_configured", c.Redis.URL != ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	switch getEnv(key, "") {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
