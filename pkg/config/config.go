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
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	SMTP          SMTPConfig
	Quotation     QuotationConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SENTINEL_APP_ENV" required:"true"`
	Port         string `envconfig:"SENTINEL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SENTINEL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SENTINEL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SENTINEL_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SENTINEL_DB_DSN"`
	Driver string `envconfig:"SENTINEL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SENTINEL_DB_HOST"`
	LegacyPort     int    `envconfig:"SENTINEL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SENTINEL_DB_USER"`
	LegacyPassword string `envconfig:"SENTINEL_DB_PASSWORD"`
	LegacyName     string `envconfig:"SENTINEL_DB_NAME"`
	LegacySSLMode  string `envconfig:"SENTINEL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SENTINEL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SENTINEL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SENTINEL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SENTINEL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SENTINEL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SENTINEL_REDIS_ADDR"`
	Password     string        `envconfig:"SENTINEL_REDIS_PASSWORD"`
	DB           int           `envconfig:"SENTINEL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SENTINEL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SENTINEL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SENTINEL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SENTINEL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SENTINEL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SENTINEL_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SENTINEL_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SENTINEL_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SENTINEL_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SENTINEL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SENTINEL_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SENTINEL_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SENTINEL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SENTINEL_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SENTINEL_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SENTINEL_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SENTINEL_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SENTINEL_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SENTINEL_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SENTINEL_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SENTINEL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SENTINEL_AUTO_MIGRATE" default:"false"`
}

type SMTPConfig struct {
	Host        string `envconfig:"SENTINEL_SMTP_HOST"`
	Port        int    `envconfig:"SENTINEL_SMTP_PORT" default:"587"`
	Username    string `envconfig:"SENTINEL_SMTP_USERNAME"`
	Password    string `envconfig:"SENTINEL_SMTP_PASSWORD"`
	DefaultFrom string `envconfig:"SENTINEL_SMTP_FROM_EMAIL" default:"quotes@sentinelworks.io"`
}

// Enabled reports whether outbound email is configured at all. The worker
// refuses to start mail delivery without it.
func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

type QuotationConfig struct {
	CompanyName string `envconfig:"SENTINEL_QUOTATION_COMPANY_NAME" default:"Sentinel Pricing"`
	Currency    string `envconfig:"SENTINEL_QUOTATION_CURRENCY" default:"INR"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SENTINEL_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SENTINEL_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SENTINEL_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// PollInterval returns the worker poll cadence as a duration.
func (o OutboxConfig) PollInterval() time.Duration {
	if o.PollIntervalMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(o.PollIntervalMS) * time.Millisecond
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
