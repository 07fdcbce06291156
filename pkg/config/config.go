package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Export        ExportConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Export.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SIAL_APP_ENV" required:"true"`
	Port         string `envconfig:"SIAL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SIAL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SIAL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SIAL_DB_DSN"`
	Driver string `envconfig:"SIAL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SIAL_DB_HOST"`
	LegacyPort     int    `envconfig:"SIAL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SIAL_DB_USER"`
	LegacyPassword string `envconfig:"SIAL_DB_PASSWORD"`
	LegacyName     string `envconfig:"SIAL_DB_NAME"`
	LegacySSLMode  string `envconfig:"SIAL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SIAL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SIAL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SIAL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SIAL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SIAL_REDIS_URL"`
	Address      string        `envconfig:"SIAL_REDIS_ADDR"`
	Password     string        `envconfig:"SIAL_REDIS_PASSWORD"`
	DB           int           `envconfig:"SIAL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SIAL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SIAL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SIAL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SIAL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SIAL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SIAL_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SIAL_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SIAL_JWT_EXPIRATION_MINUTES" default:"720"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SIAL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SIAL_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SIAL_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SIAL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SIAL_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	Window   time.Duration `envconfig:"SIAL_AUTH_RATE_LIMIT_WINDOW" default:"1m"`
	IPLimit  int           `envconfig:"SIAL_AUTH_RATE_LIMIT_IP_LIMIT" default:"60"`
	KeyLimit int           `envconfig:"SIAL_AUTH_RATE_LIMIT_KEY_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SIAL_AUTO_MIGRATE" default:"false"`
}

// ExportConfig bounds the CSV export endpoint. MaxRows is a hard ceiling the
// per-request limit can never exceed.
type ExportConfig struct {
	MaxRows int `envconfig:"SIAL_EXPORT_MAX_ROWS" default:"10000"`
}

func (e ExportConfig) validate() error {
	if e.MaxRows <= 0 || e.MaxRows > ExportRowCeiling {
		return fmt.Errorf("%s must be between 1 and %d", EnvExportMaxRows, ExportRowCeiling)
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
