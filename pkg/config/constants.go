package config

const (
	EnvPrefix = "sentinel"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                 = "SENTINEL_APP_ENV"
	EnvPort                   = "SENTINEL_APP_PORT"
	EnvDBDSN                  = "SENTINEL_DB_DSN"
	EnvDBHost                 = "SENTINEL_DB_HOST"
	EnvDBUser                 = "SENTINEL_DB_USER"
	EnvDBName                 = "SENTINEL_DB_NAME"
	EnvRedisURL               = "SENTINEL_REDIS_URL"
	EnvJWTSecret              = "SENTINEL_JWT_SECRET"
	EnvJWTIssuer              = "SENTINEL_JWT_ISSUER"
	EnvJWTExpMins             = "SENTINEL_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SENTINEL_REFRESH_TOKEN_TTL_MINUTES"
	EnvSMTPHost               = "SENTINEL_SMTP_HOST"
	EnvSMTPFrom               = "SENTINEL_SMTP_FROM_EMAIL"
)

// Required together when SENTINEL_DB_DSN is absent.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
