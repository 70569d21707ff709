package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	JWT      JWTConfig      `env:",prefix=JWT_"`
	Action   ActionConfig   `env:",prefix=ACTION_"`
	Security SecurityConfig `env:",prefix="`
	SMTP     SMTPConfig     `env:",prefix=SMTP_"`
	Media    MediaConfig    `env:",prefix=MEDIA_"`
	App      AppConfig      `env:",prefix=APP_"`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host       string `env:"HOST,default=localhost"`
	Port       string `env:"PORT,default=5432"`
	User       string `env:"USER,default=places_api"`
	Password   string `env:"PASSWORD,default=places_api_password"`
	DBName     string `env:"DB,default=places_api_db"`
	SSLMode    string `env:"SSLMODE,default=disable"`
	Migrations string `env:"MIGRATIONS,default=file://migrations"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

// JWTConfig holds the session token pair settings. Access and refresh tokens
// are signed with independent secrets.
type JWTConfig struct {
	AccessSecret  string   `env:"ACCESS_SECRET,required"`
	RefreshSecret string   `env:"REFRESH_SECRET,required"`
	AccessExpiry  Duration `env:"ACCESS_EXPIRY,default=15m"`
	RefreshExpiry Duration `env:"REFRESH_EXPIRY,default=7d"`
}

// ActionConfig holds per-purpose action token secrets and expiries
type ActionConfig struct {
	VerifyEmailSecret    string   `env:"VERIFY_EMAIL_SECRET,required"`
	VerifyEmailExpiry    Duration `env:"VERIFY_EMAIL_EXPIRY,default=1d"`
	ForgotPasswordSecret string   `env:"FORGOT_PASSWORD_SECRET,required"`
	ForgotPasswordExpiry Duration `env:"FORGOT_PASSWORD_EXPIRY,default=30m"`
	AccountRestoreSecret string   `env:"ACCOUNT_RESTORE_SECRET,required"`
	AccountRestoreExpiry Duration `env:"ACCOUNT_RESTORE_EXPIRY,default=1d"`
}

type SecurityConfig struct {
	BCryptCost        int      `env:"BCRYPT_COST,default=12"`
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

type SMTPConfig struct {
	Host     string `env:"HOST,default=smtp.gmail.com"`
	Port     int    `env:"PORT,default=587"`
	Email    string `env:"EMAIL,default="`
	Password string `env:"PASSWORD,default="`
}

// MediaConfig configures the Cloudinary account holding uploaded photos
type MediaConfig struct {
	CloudName string `env:"CLOUD_NAME,default="`
	APIKey    string `env:"API_KEY,default="`
	APISecret string `env:"API_SECRET,default="`
}

type AppConfig struct {
	FrontURL               string   `env:"FRONT_URL,default=http://localhost:3000"`
	MaxAdminEstablishments int      `env:"MAX_ADMIN_ESTABLISHMENTS,default=5"`
	SessionMaxAge          Duration `env:"SESSION_MAX_AGE,default=30d"`
	ActionTokenMaxAge      Duration `env:"ACTION_TOKEN_MAX_AGE,default=7d"`
	OldPasswordMaxAge      Duration `env:"OLD_PASSWORD_MAX_AGE,default=90d"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	for name, secret := range map[string]string{
		"JWT_ACCESS_SECRET":             config.JWT.AccessSecret,
		"JWT_REFRESH_SECRET":            config.JWT.RefreshSecret,
		"ACTION_VERIFY_EMAIL_SECRET":    config.Action.VerifyEmailSecret,
		"ACTION_FORGOT_PASSWORD_SECRET": config.Action.ForgotPasswordSecret,
		"ACTION_ACCOUNT_RESTORE_SECRET": config.Action.AccountRestoreSecret,
	} {
		if len(secret) < 32 {
			return nil, fmt.Errorf("%s must be at least 32 characters long", name)
		}
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}
