package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "RECICLA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "RECICLA_DB_DSN"
	EnvDBHost = "RECICLA_DB_HOST"
	EnvDBUser = "RECICLA_DB_USER"
	EnvDBName = "RECICLA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Mail          MailConfig
	Points        PointsConfig
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
	Env          string `envconfig:"RECICLA_APP_ENV" required:"true"`
	Port         string `envconfig:"RECICLA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RECICLA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RECICLA_LOG_WARN_STACK" default:"false"`
	Timezone     string `envconfig:"RECICLA_APP_TIMEZONE" default:"America/Sao_Paulo"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the configured timezone, falling back to UTC. Daily codes
// are valid for a single calendar day in this location.
func (a AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type ServiceConfig struct {
	Kind string `envconfig:"RECICLA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"RECICLA_DB_DSN"`
	Driver string `envconfig:"RECICLA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RECICLA_DB_HOST"`
	LegacyPort     int    `envconfig:"RECICLA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RECICLA_DB_USER"`
	LegacyPassword string `envconfig:"RECICLA_DB_PASSWORD"`
	LegacyName     string `envconfig:"RECICLA_DB_NAME"`
	LegacySSLMode  string `envconfig:"RECICLA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RECICLA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RECICLA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RECICLA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RECICLA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RECICLA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RECICLA_REDIS_ADDR"`
	Password     string        `envconfig:"RECICLA_REDIS_PASSWORD"`
	DB           int           `envconfig:"RECICLA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RECICLA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RECICLA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RECICLA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RECICLA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RECICLA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"RECICLA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"RECICLA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"RECICLA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"RECICLA_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"RECICLA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"RECICLA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"RECICLA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"RECICLA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"RECICLA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"RECICLA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"RECICLA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"RECICLA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"RECICLA_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"RECICLA_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"RECICLA_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"RECICLA_AUTO_MIGRATE" default:"false"`
}

type MailConfig struct {
	SendgridAPIKey string `envconfig:"RECICLA_SENDGRID_API_KEY"`
	FromEmail      string `envconfig:"RECICLA_MAIL_FROM_EMAIL" default:"nao-responda@reciclaja.com.br"`
	FromName       string `envconfig:"RECICLA_MAIL_FROM_NAME" default:"ReciclaJá"`
}

// Enabled reports whether outbound email is configured at all.
func (m MailConfig) Enabled() bool {
	return strings.TrimSpace(m.SendgridAPIKey) != ""
}

type PointsConfig struct {
	DailyCodeValue         int `envconfig:"RECICLA_POINTS_DAILY_CODE_VALUE" default:"50"`
	PickupCompletionAward  int `envconfig:"RECICLA_POINTS_PICKUP_COMPLETION_AWARD" default:"100"`
	RecoveryCodeTTLMinutes int `envconfig:"RECICLA_RECOVERY_CODE_TTL_MINUTES" default:"30"`
}

// RecoveryCodeTTL returns how long a password recovery code stays valid.
func (p PointsConfig) RecoveryCodeTTL() time.Duration {
	if p.RecoveryCodeTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(p.RecoveryCodeTTLMinutes) * time.Minute
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
