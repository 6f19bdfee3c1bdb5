package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// ErrCredentials indicates missing or placeholder TikTok credentials.
// Login and callback handling must refuse to run while this holds.
var ErrCredentials = errors.New("tiktok credentials missing or placeholder")

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	TikTok   TikTokConfig   `env:",prefix=TIKTOK_"`
	Session  SessionConfig  `env:",prefix=SESSION_"`
	Security SecurityConfig `env:",prefix="`
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
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=riskscan"`
	Password string `env:"PASSWORD,default=riskscan_password"`
	DBName   string `env:"DB,default=riskscan_db"`
	SSLMode  string `env:"SSLMODE,default=disable"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

// TikTokConfig holds the OAuth application credentials. They are not
// validated at load time: the service can start without them, but the
// connect flow refuses to run until real values are supplied.
type TikTokConfig struct {
	ClientKey    string   `env:"CLIENT_KEY,default="`
	ClientSecret string   `env:"CLIENT_SECRET,default="`
	RedirectURI  string   `env:"REDIRECT_URI,default="`
	Scopes       string   `env:"SCOPES,default=user.info.basic,video.list"`
	HTTPTimeout  Duration `env:"HTTP_TIMEOUT,default=30s"`
}

// SessionConfig covers both PKCE login sessions and the signed
// connection cookie issued after a successful callback.
type SessionConfig struct {
	Secret       string   `env:"SECRET,required"`
	PKCETTL      Duration `env:"PKCE_TTL,default=10m"`
	CookieExpiry Duration `env:"COOKIE_EXPIRY,default=24h"`
}

type SecurityConfig struct {
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// MigrateURL returns the connection URL used by golang-migrate.
func (p PostgresConfig) MigrateURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// placeholder reports whether a credential is absent or still carries a
// template value like "<your-client-key>".
func placeholder(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	return strings.HasPrefix(v, "<") && strings.HasSuffix(v, ">")
}

// Validate checks the OAuth credentials. It returns an error wrapping
// ErrCredentials naming the first offending variable.
func (t TikTokConfig) Validate() error {
	if placeholder(t.ClientKey) {
		return fmt.Errorf("TIKTOK_CLIENT_KEY: %w", ErrCredentials)
	}
	if placeholder(t.ClientSecret) {
		return fmt.Errorf("TIKTOK_CLIENT_SECRET: %w", ErrCredentials)
	}
	if placeholder(t.RedirectURI) {
		return fmt.Errorf("TIKTOK_REDIRECT_URI: %w", ErrCredentials)
	}
	return nil
}

// ScopeList splits the comma-separated scope string.
func (t TikTokConfig) ScopeList() []string {
	return strings.Split(t.Scopes, ",")
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(config.Session.Secret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 characters long")
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}
