package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "cartvault"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Cart         CartConfig
	Oracle       OracleConfig
	Redis        RedisConfig
	DB           DBConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CARTVAULT_APP_ENV" required:"true"`
	Port         string `envconfig:"CARTVAULT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CARTVAULT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARTVAULT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CartConfig drives the envelope codec and session lifecycle. The secret is
// an obfuscation measure, not a trust boundary: any client running the code
// holds it, which is why reconciliation re-checks every price on load.
type CartConfig struct {
	EnvelopeSecret string        `envconfig:"CARTVAULT_ENVELOPE_SECRET" required:"true"`
	EnvelopeSalt   string        `envconfig:"CARTVAULT_ENVELOPE_SALT" required:"true"`
	KDFIterations  int           `envconfig:"CARTVAULT_KDF_ITERATIONS" default:"100000"`
	EnvelopeTTL    time.Duration `envconfig:"CARTVAULT_ENVELOPE_TTL" default:"720h"`
	SessionIdleTTL time.Duration `envconfig:"CARTVAULT_SESSION_IDLE_TTL" default:"30m"`
}

func (c CartConfig) validate() error {
	if c.KDFIterations < 100000 {
		return fmt.Errorf("CARTVAULT_KDF_ITERATIONS must be at least 100000, got %d", c.KDFIterations)
	}
	return nil
}

type OracleConfig struct {
	BaseURL string        `envconfig:"CARTVAULT_ORACLE_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"CARTVAULT_ORACLE_TIMEOUT" default:"5s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARTVAULT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CARTVAULT_REDIS_ADDR"`
	Password     string        `envconfig:"CARTVAULT_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARTVAULT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARTVAULT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARTVAULT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARTVAULT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARTVAULT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARTVAULT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type DBConfig struct {
	DSN    string `envconfig:"CARTVAULT_DB_DSN"`
	Driver string `envconfig:"CARTVAULT_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"CARTVAULT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARTVAULT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARTVAULT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARTVAULT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CARTVAULT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CARTVAULT_AUTO_MIGRATE" default:"false"`
}
