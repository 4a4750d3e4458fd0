package config

const (
	EnvPrefix = "VOO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	SMSProviderAfricasTalking = "africastalking"
	SMSProviderTermii         = "termii"
)

const (
	EnvAppEnv                 = "VOO_APP_ENV"
	EnvPort                   = "VOO_APP_PORT"
	EnvDBDSN                  = "VOO_DB_DSN"
	EnvDBHost                 = "VOO_DB_HOST"
	EnvDBUser                 = "VOO_DB_USER"
	EnvDBName                 = "VOO_DB_NAME"
	EnvDBPassword             = "VOO_DB_PASSWORD"
	EnvRedisURL               = "VOO_REDIS_URL"
	EnvMongoURI               = "VOO_MONGO_URI"
	EnvJWTSecret              = "VOO_JWT_SECRET"
	EnvJWTIssuer              = "VOO_JWT_ISSUER"
	EnvJWTExpMins             = "VOO_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "VOO_REFRESH_TOKEN_TTL_MINUTES"
	EnvSMSProvider            = "VOO_SMS_PROVIDER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
