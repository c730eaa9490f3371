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
	Backend       BackendConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Session       SessionConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	List          ListConfig
	CORS          CORSConfig
	Audit         AuditConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Backend.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SPIRELEAP_APP_ENV" required:"true"`
	Port         string `envconfig:"SPIRELEAP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SPIRELEAP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SPIRELEAP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"SPIRELEAP_SERVICE_KIND" default:"api"`
}

// BackendConfig points the console at the CRM REST API it fronts.
type BackendConfig struct {
	BaseURL       string        `envconfig:"SPIRELEAP_BACKEND_URL" required:"true"`
	Timeout       time.Duration `envconfig:"SPIRELEAP_BACKEND_TIMEOUT" default:"15s"`
	MaxUploadMB   int           `envconfig:"SPIRELEAP_BACKEND_MAX_UPLOAD_MB" default:"10"`
	MaxImageCount int           `envconfig:"SPIRELEAP_BACKEND_MAX_IMAGE_COUNT" default:"20"`
}

// MaxUploadBytes returns the multipart size limit for proxied uploads.
func (b BackendConfig) MaxUploadBytes() int64 {
	if b.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(b.MaxUploadMB) << 20
}

func (b BackendConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(b.BaseURL))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvBackendURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url", EnvBackendURL)
	}
	return nil
}

type DBConfig struct {
	DSN    string `envconfig:"SPIRELEAP_DB_DSN"`
	Driver string `envconfig:"SPIRELEAP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SPIRELEAP_DB_HOST"`
	LegacyPort     int    `envconfig:"SPIRELEAP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SPIRELEAP_DB_USER"`
	LegacyPassword string `envconfig:"SPIRELEAP_DB_PASSWORD"`
	LegacyName     string `envconfig:"SPIRELEAP_DB_NAME"`
	LegacySSLMode  string `envconfig:"SPIRELEAP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SPIRELEAP_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"SPIRELEAP_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"SPIRELEAP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SPIRELEAP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the audit store runs on the embedded driver.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"SPIRELEAP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SPIRELEAP_REDIS_ADDR"`
	Password     string        `envconfig:"SPIRELEAP_REDIS_PASSWORD"`
	DB           int           `envconfig:"SPIRELEAP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SPIRELEAP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SPIRELEAP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SPIRELEAP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SPIRELEAP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SPIRELEAP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig signs the console's own tab-scoped session tokens.
type JWTConfig struct {
	Secret            string `envconfig:"SPIRELEAP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SPIRELEAP_JWT_ISSUER" default:"spireleap-console"`
	ExpirationMinutes int    `envconfig:"SPIRELEAP_JWT_EXPIRATION_MINUTES" default:"720"`
}

// TokenTTL returns the console token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type SessionConfig struct {
	TTL      time.Duration `envconfig:"SPIRELEAP_SESSION_TTL" default:"12h"`
	DraftTTL time.Duration `envconfig:"SPIRELEAP_SESSION_DRAFT_TTL" default:"2h"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SPIRELEAP_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SPIRELEAP_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SPIRELEAP_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SPIRELEAP_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SPIRELEAP_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SPIRELEAP_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SPIRELEAP_AUTO_MIGRATE" default:"false"`
	AuditEnable bool `envconfig:"SPIRELEAP_AUDIT_ENABLED" default:"true"`
}

// ListConfig tunes the list-view controller.
type ListConfig struct {
	DefaultLimit   int           `envconfig:"SPIRELEAP_LIST_DEFAULT_LIMIT" default:"20"`
	MaxLimit       int           `envconfig:"SPIRELEAP_LIST_MAX_LIMIT" default:"100"`
	TypingDebounce time.Duration `envconfig:"SPIRELEAP_LIST_TYPING_DEBOUNCE" default:"400ms"`
	StateTTL       time.Duration `envconfig:"SPIRELEAP_LIST_STATE_TTL" default:"12h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SPIRELEAP_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type AuditConfig struct {
	RetentionDays int           `envconfig:"SPIRELEAP_AUDIT_RETENTION_DAYS" default:"180"`
	CronInterval  time.Duration `envconfig:"SPIRELEAP_AUDIT_CRON_INTERVAL" default:"24h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
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
