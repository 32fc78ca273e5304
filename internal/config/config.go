package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kevin07696/payway-gateway/internal/domain"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Gateway     GatewayConfig
	Secrets     SecretsConfig
	Logger      LoggerConfig
}

// ServerConfig holds the checkout HTTP server configuration
type ServerConfig struct {
	Port           int
	MetricsPort    int
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustedProxies lists the IPs or CIDRs whose X-Forwarded-For header is honoured
	TrustedProxies []string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// Mode selects which PayWay key pair is in use
type Mode string

const (
	ModeTest Mode = "test"
	ModeLive Mode = "live"
)

// GatewayConfig holds PayWay REST API configuration
type GatewayConfig struct {
	Mode               Mode
	MerchantID         string // e.g. TEST
	APIBaseURL         string // e.g. https://api.payway.com.au/rest/v1
	SecretKeyTest      string
	SecretKeyLive      string
	PublishableKeyTest string
	PublishableKeyLive string
	Timeout            time.Duration
}

// SecretsConfig selects where PayWay keys come from when they are not in the environment
type SecretsConfig struct {
	Backend string // env, local, aws, vault

	LocalPath string

	AWSRegion   string
	AWSProfile  string
	AWSEndpoint string

	VaultAddress string
	VaultToken   string
	VaultMount   string

	SecretKeyTestPath      string
	SecretKeyLivePath      string
	PublishableKeyTestPath string
	PublishableKeyLivePath string
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// SelectKey picks the value that matches mode.
// Any mode other than test or live is a configuration error; there is no empty-key fallback.
func SelectKey(mode Mode, testValue, liveValue string) (string, error) {
	switch mode {
	case ModeTest:
		return testValue, nil
	case ModeLive:
		return liveValue, nil
	default:
		return "", domain.NewConfigurationError(fmt.Sprintf("unknown gateway mode %q, the key is empty", string(mode))).
			WithDetail("mode", string(mode))
	}
}

// SecretKey returns the secret API key for the configured mode
func (g GatewayConfig) SecretKey() (string, error) {
	return SelectKey(g.Mode, g.SecretKeyTest, g.SecretKeyLive)
}

// PublishableKey returns the publishable API key for the configured mode
func (g GatewayConfig) PublishableKey() (string, error) {
	return SelectKey(g.Mode, g.PublishableKeyTest, g.PublishableKeyLive)
}

// Validate checks that the gateway can make authenticated calls
func (g GatewayConfig) Validate() error {
	if g.MerchantID == "" {
		return domain.NewConfigurationError("PAYWAY_MERCHANT_ID is required")
	}
	if g.APIBaseURL == "" {
		return domain.NewConfigurationError("PAYWAY_API_URL is required")
	}
	secretKey, err := g.SecretKey()
	if err != nil {
		return err
	}
	if secretKey == "" {
		return domain.NewConfigurationError(fmt.Sprintf("secret key for %s mode is required", g.Mode))
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables.
// PayWay keys may be left empty here and resolved from a secret manager afterwards.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:           getEnvAsInt("HTTP_PORT", 8081),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
			RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 10),
			RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),
			TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),
		},
		Database: LoadDatabaseFromEnv(),
		Gateway: GatewayConfig{
			Mode:               Mode(strings.ToLower(getEnv("PAYWAY_MODE", string(ModeTest)))),
			MerchantID:         getEnv("PAYWAY_MERCHANT_ID", ""),
			APIBaseURL:         strings.TrimRight(getEnv("PAYWAY_API_URL", "https://api.payway.com.au/rest/v1"), "/"),
			SecretKeyTest:      getEnv("PAYWAY_SECRET_KEY_TEST", ""),
			SecretKeyLive:      getEnv("PAYWAY_SECRET_KEY", ""),
			PublishableKeyTest: getEnv("PAYWAY_PUBLISHABLE_KEY_TEST", ""),
			PublishableKeyLive: getEnv("PAYWAY_PUBLISHABLE_KEY", ""),
			Timeout:            time.Duration(getEnvAsInt("PAYWAY_TIMEOUT", 30)) * time.Second,
		},
		Secrets: SecretsConfig{
			Backend:                getEnv("SECRETS_BACKEND", "env"),
			LocalPath:              getEnv("SECRETS_LOCAL_PATH", "./secrets"),
			AWSRegion:              getEnv("AWS_REGION", "ap-southeast-2"),
			AWSProfile:             getEnv("AWS_PROFILE", ""),
			AWSEndpoint:            getEnv("AWS_SECRETS_ENDPOINT", ""),
			VaultAddress:           getEnv("VAULT_ADDR", ""),
			VaultToken:             getEnv("VAULT_TOKEN", ""),
			VaultMount:             getEnv("VAULT_MOUNT", "secret"),
			SecretKeyTestPath:      getEnv("PAYWAY_SECRET_KEY_TEST_PATH", "payway-gateway/test/secret-key"),
			SecretKeyLivePath:      getEnv("PAYWAY_SECRET_KEY_PATH", "payway-gateway/live/secret-key"),
			PublishableKeyTestPath: getEnv("PAYWAY_PUBLISHABLE_KEY_TEST_PATH", "payway-gateway/test/publishable-key"),
			PublishableKeyLivePath: getEnv("PAYWAY_PUBLISHABLE_KEY_PATH", "payway-gateway/live/publishable-key"),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	// Validate required fields
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.Gateway.MerchantID == "" {
		return nil, fmt.Errorf("PAYWAY_MERCHANT_ID is required")
	}

	return cfg, nil
}

// LoadDatabaseFromEnv loads only the PostgreSQL settings
func LoadDatabaseFromEnv() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Database: getEnv("DB_NAME", "payway_gateway"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 25)),
		MinConns: int32(getEnvAsInt("DB_MIN_CONNS", 5)),
	}
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated value, dropping empty entries
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
