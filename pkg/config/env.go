package config

const EnvPrefix = "SPIRELEAP"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv      = "SPIRELEAP_APP_ENV"
	EnvPort        = "SPIRELEAP_APP_PORT"
	EnvLogLevel    = "SPIRELEAP_LOG_LEVEL"
	EnvServiceKind = "SPIRELEAP_SERVICE_KIND"

	EnvBackendURL     = "SPIRELEAP_BACKEND_URL"
	EnvBackendTimeout = "SPIRELEAP_BACKEND_TIMEOUT"

	EnvDBDSN    = "SPIRELEAP_DB_DSN"
	EnvDBDriver = "SPIRELEAP_DB_DRIVER"
	EnvDBHost   = "SPIRELEAP_DB_HOST"
	EnvDBPort   = "SPIRELEAP_DB_PORT"
	EnvDBUser   = "SPIRELEAP_DB_USER"
	EnvDBPass   = "SPIRELEAP_DB_PASSWORD"
	EnvDBName   = "SPIRELEAP_DB_NAME"

	EnvRedisURL = "SPIRELEAP_REDIS_URL"

	EnvJWTSecret  = "SPIRELEAP_JWT_SECRET"
	EnvJWTIssuer  = "SPIRELEAP_JWT_ISSUER"
	EnvJWTExpMins = "SPIRELEAP_JWT_EXPIRATION_MINUTES"

	EnvListTypingDebounce = "SPIRELEAP_LIST_TYPING_DEBOUNCE"
	EnvAuditRetentionDays = "SPIRELEAP_AUDIT_RETENTION_DAYS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
