package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App            AppConfig
	DB             DBConfig
	Redis          RedisConfig
	Mongo          MongoConfig
	JWT            JWTConfig
	Password       PasswordConfig
	AuthRateLimit  AuthRateLimitConfig
	IssueRateLimit IssueRateLimitConfig
	FeatureFlags   FeatureFlagsConfig
	OpenAI         OpenAIConfig
	Cloudinary     CloudinaryConfig
	Firebase       FirebaseConfig
	SMS            SMSConfig
	Notifications  NotificationsConfig
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
	Env          string   `envconfig:"VOO_APP_ENV" required:"true"`
	Port         string   `envconfig:"VOO_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"VOO_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"VOO_LOG_WARN_STACK" default:"false"`
	LogFormat    string   `envconfig:"VOO_LOG_FORMAT" default:"json"`
	CountryCode  string   `envconfig:"VOO_PHONE_COUNTRY_CODE" default:"254"`
	CORSOrigins  []string `envconfig:"VOO_CORS_ALLOWED_ORIGINS" default:"*"`
	Timezone     string   `envconfig:"VOO_APP_TIMEZONE" default:"Africa/Nairobi"`
}

// Location resolves the ward's local zone, used for calendar-year boundaries.
func (a AppConfig) Location() (*time.Location, error) {
	if strings.TrimSpace(a.Timezone) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", a.Timezone, err)
	}
	return loc, nil
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN string `envconfig:"VOO_DB_DSN"`

	LegacyHost     string `envconfig:"VOO_DB_HOST"`
	LegacyPort     int    `envconfig:"VOO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VOO_DB_USER"`
	LegacyPassword string `envconfig:"VOO_DB_PASSWORD"`
	LegacyName     string `envconfig:"VOO_DB_NAME"`
	LegacySSLMode  string `envconfig:"VOO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VOO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VOO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VOO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VOO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"VOO_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VOO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VOO_REDIS_ADDR"`
	Password     string        `envconfig:"VOO_REDIS_PASSWORD"`
	DB           int           `envconfig:"VOO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VOO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VOO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VOO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VOO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VOO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// MongoConfig points at the document store used for assistant transcripts.
// An empty URI disables transcript storage.
type MongoConfig struct {
	URI            string        `envconfig:"VOO_MONGO_URI"`
	Database       string        `envconfig:"VOO_MONGO_DATABASE" default:"voo_ward"`
	ConnectTimeout time.Duration `envconfig:"VOO_MONGO_CONNECT_TIMEOUT" default:"15s"`
}

// Enabled reports whether a Mongo connection was configured.
func (m MongoConfig) Enabled() bool {
	return strings.TrimSpace(m.URI) != ""
}

type JWTConfig struct {
	Secret                 string `envconfig:"VOO_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"VOO_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"VOO_JWT_EXPIRATION_MINUTES" default:"43200"`
	RefreshTokenTTLMinutes int    `envconfig:"VOO_REFRESH_TOKEN_TTL_MINUTES" default:"86400"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"VOO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"VOO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"VOO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"VOO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"VOO_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"VOO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginPhoneLimit    int           `envconfig:"VOO_AUTH_RATE_LIMIT_LOGIN_PHONE_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"VOO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"VOO_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterPhoneLimit int           `envconfig:"VOO_AUTH_RATE_LIMIT_REGISTER_PHONE_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"VOO_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type IssueRateLimitConfig struct {
	Window time.Duration `envconfig:"VOO_ISSUE_RATE_LIMIT_WINDOW" default:"1h"`
	Limit  int           `envconfig:"VOO_ISSUE_RATE_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VOO_AUTO_MIGRATE" default:"false"`
}

type OpenAIConfig struct {
	APIKey            string        `envconfig:"VOO_OPENAI_API_KEY"`
	Model             string        `envconfig:"VOO_OPENAI_MODEL" default:"gpt-4o"`
	RequestsPerSecond float64       `envconfig:"VOO_OPENAI_RPS" default:"5"`
	Burst             int           `envconfig:"VOO_OPENAI_BURST" default:"10"`
	Timeout           time.Duration `envconfig:"VOO_OPENAI_TIMEOUT" default:"45s"`
}

type CloudinaryConfig struct {
	CloudName string `envconfig:"VOO_CLOUDINARY_CLOUD_NAME"`
	APIKey    string `envconfig:"VOO_CLOUDINARY_API_KEY"`
	APISecret string `envconfig:"VOO_CLOUDINARY_API_SECRET"`
	Folder    string `envconfig:"VOO_CLOUDINARY_FOLDER" default:"voo-citizen/issues"`
}

// Enabled reports whether all Cloudinary credentials are present.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type FirebaseConfig struct {
	ProjectID       string `envconfig:"VOO_FIREBASE_PROJECT_ID"`
	CredentialsJSON string `envconfig:"VOO_FIREBASE_CREDENTIALS_JSON"`
	CredentialsFile string `envconfig:"VOO_FIREBASE_SERVICE_ACCOUNT_PATH"`
}

// Enabled reports whether service account credentials were supplied.
func (f FirebaseConfig) Enabled() bool {
	return strings.TrimSpace(f.CredentialsJSON) != "" || strings.TrimSpace(f.CredentialsFile) != ""
}

type SMSConfig struct {
	Provider              string        `envconfig:"VOO_SMS_PROVIDER" default:"africastalking"`
	AfricasTalkingAPIKey  string        `envconfig:"VOO_AFRICASTALKING_API_KEY"`
	AfricasTalkingUser    string        `envconfig:"VOO_AFRICASTALKING_USERNAME" default:"sandbox"`
	AfricasTalkingBaseURL string        `envconfig:"VOO_AFRICASTALKING_BASE_URL" default:"https://api.africastalking.com"`
	TermiiAPIKey          string        `envconfig:"VOO_TERMII_API_KEY"`
	TermiiSenderID        string        `envconfig:"VOO_TERMII_SENDER_ID" default:"VOO"`
	TermiiBaseURL         string        `envconfig:"VOO_TERMII_BASE_URL" default:"https://api.ng.termii.com"`
	Timeout               time.Duration `envconfig:"VOO_SMS_TIMEOUT" default:"10s"`
}

// NormalizedProvider returns the lower-cased provider name.
func (s SMSConfig) NormalizedProvider() string {
	provider := strings.ToLower(strings.TrimSpace(s.Provider))
	if provider == "" {
		return SMSProviderAfricasTalking
	}
	return provider
}

type NotificationsConfig struct {
	Timeout time.Duration `envconfig:"VOO_NOTIFICATIONS_TIMEOUT" default:"15s"`
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
