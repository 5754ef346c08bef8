package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/offline_pay/internal/ledger"
	"github.com/congo-pay/offline_pay/internal/token"
	"github.com/congo-pay/offline_pay/internal/vault"
)

const (
	defaultAppName         = "OfflinePay"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultVaultPath       = "./data"
	defaultRedeemRateLimit = 10
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Vault backends.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName          string
	AppEnv           string
	Port             string
	LogLevel         string
	LogFormat        string
	DatabaseURL      string
	RedisURL         string
	ShutdownPeriod   time.Duration
	IdempotencyTTL   time.Duration
	VaultBackend     string
	VaultPath        string
	VaultKeyID       string
	VaultPassphrase  string
	SigningSecret    string
	TokenScheme      string
	BootstrapBalance decimal.Decimal
	RedeemRateLimit  int
	EventsChannel    string
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:          getEnv("APP_NAME", defaultAppName),
		AppEnv:           getEnv("APP_ENV", defaultAppEnv),
		Port:             getEnv("PORT", defaultPort),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", defaultLogFormat)),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		ShutdownPeriod:   defaultShutdownDelay,
		IdempotencyTTL:   defaultIdempotencyTTL,
		VaultBackend:     strings.ToLower(getEnv("VAULT_BACKEND", BackendFile)),
		VaultPath:        getEnv("VAULT_PATH", defaultVaultPath),
		VaultKeyID:       getEnv("VAULT_KEY_ID", vault.DefaultKeyID),
		VaultPassphrase:  getEnv("VAULT_PASSPHRASE", vault.DefaultPassphrase),
		SigningSecret:    getEnv("SIGNING_SECRET", token.DefaultSecret),
		TokenScheme:      getEnv("TOKEN_SCHEME", token.DefaultScheme),
		BootstrapBalance: ledger.BootstrapBalance,
		RedeemRateLimit:  defaultRedeemRateLimit,
		EventsChannel:    os.Getenv("EVENTS_CHANNEL"),
	}

	var err error
	if cfg.ShutdownPeriod, err = durationEnv(shutdownSecondsEnvVar, shutdownDurationEnvVar, cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv(idemTTLSecondsEnvVar, idemTTLDurEnvVar, cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("BOOTSTRAP_BALANCE"); v != "" {
		grant, err := ledger.ParseAmount(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid BOOTSTRAP_BALANCE: %w", err)
		}
		if grant.IsNegative() {
			return Config{}, fmt.Errorf("BOOTSTRAP_BALANCE must not be negative")
		}
		cfg.BootstrapBalance = grant
	}

	if v := os.Getenv("REDEEM_RATE_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid REDEEM_RATE_LIMIT: %w", err)
		}
		cfg.RedeemRateLimit = limit
	}

	if strings.Contains(cfg.TokenScheme, "://") || strings.ContainsAny(cfg.TokenScheme, "?&= ") {
		return Config{}, fmt.Errorf("invalid TOKEN_SCHEME %q", cfg.TokenScheme)
	}

	switch cfg.VaultBackend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when VAULT_BACKEND=redis")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when VAULT_BACKEND=postgres")
		}
	default:
		return Config{}, fmt.Errorf("unknown VAULT_BACKEND %q", cfg.VaultBackend)
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the app runs in a development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

func durationEnv(secondsKey, durationKey string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(secondsKey); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(durationKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationKey, err)
		}
		return d, nil
	}
	return fallback, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
