package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Config holds every environment-driven setting of the service.
type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	BaseURL  string `env:"BASE_URL,  default=http://localhost:8080"`

	JWT    JWTConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Mail   MailConfig
	Stripe StripeConfig
}

type JWTConfig struct {
	Secret    string `env:"JWT_SECRET, required"`
	ExpiresIn string `env:"JWT_EXPIRES_IN,   default=24h"`
	// CookieDays is the lifetime of the jwt cookie, in days.
	CookieDays int `env:"JWT_COOKIE_DAYS, default=90"`
}

type MongoConfig struct {
	// URI may contain the literal placeholder <PASSWORD>, substituted with
	// Password at connect time so the secret stays out of the URI variable.
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Password string `env:"MONGO_PASSWORD"`
	Database string `env:"MONGO_DB,  default=natours"`
}

// DSN returns the connection string with the password substituted in.
func (m MongoConfig) DSN() string {
	return strings.Replace(m.URI, "<PASSWORD>", m.Password, 1)
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// MailConfig carries both transports: Host/Port/Username/Password point at a
// capture service (mailtrap and friends) in development, ProdHost and the
// prod credentials at the real provider. The mailer picks one based on Env.
type MailConfig struct {
	From string `env:"EMAIL_FROM, default=natours.io <hello@natours.io>"`

	Host     string `env:"EMAIL_HOST, default=localhost"`
	Port     int    `env:"EMAIL_PORT, default=2525"`
	Username string `env:"EMAIL_USERNAME"`
	Password string `env:"EMAIL_PASSWORD"`

	ProdHost     string `env:"MAIL_PROD_HOST"`
	ProdPort     int    `env:"MAIL_PROD_PORT, default=587"`
	ProdUsername string `env:"MAIL_PROD_USERNAME"`
	ProdPassword string `env:"MAIL_PROD_PASSWORD"`
}

type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
