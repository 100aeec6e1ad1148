package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type Config struct {
	Port      string `env:"PORT,default=8080"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`

	Database   Database
	Reddit     Reddit
	Imgur      Imgur
	GifHosts   GifHosts
	MediaCache MediaCache
	Poller     Poller
	Twilio     Twilio
}

type Database struct {
	Driver   string `env:"DB_DRIVER,default=pgx"` // pgx, postgres or sqlite
	Host     string `env:"DB_HOST,default=localhost"`
	Port     string `env:"DB_PORT,default=5432"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME"`
	SSLMode  string `env:"DB_SSLMODE,default=disable"`
	Path     string `env:"DB_PATH,default=companion.db"` // sqlite file
	LogLevel string `env:"DB_LOG_LEVEL,default=warn"`
}

// DSN returns the connection string for the configured driver.
func (d Database) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type Reddit struct {
	ClientID          string        `env:"REDDIT_CLIENT_ID"`
	ClientSecret      string        `env:"REDDIT_CLIENT_SECRET"`
	RedirectURL       string        `env:"REDDIT_REDIRECT_URL"`
	UserAgent         string        `env:"REDDIT_USER_AGENT,default=reddit-companion/1.0"`
	APIBaseURL        string        `env:"REDDIT_API_URL,default=https://oauth.reddit.com"`
	TokenURL          string        `env:"REDDIT_TOKEN_URL,default=https://www.reddit.com/api/v1/access_token"`
	RequestsPerMinute int           `env:"REDDIT_REQUESTS_PER_MINUTE,default=60"`
	CacheTTL          time.Duration `env:"REDDIT_CACHE_TTL,default=10m"`
}

type Imgur struct {
	ClientID string `env:"IMGUR_CLIENT_ID"`
	BaseURL  string `env:"IMGUR_API_URL,default=https://api.imgur.com"`
}

type GifHosts struct {
	GfycatBaseURL  string `env:"GFYCAT_API_URL,default=https://api.gfycat.com"`
	RedgifsBaseURL string `env:"REDGIFS_API_URL,default=https://api.redgifs.com"`
}

type MediaCache struct {
	RedisURL string        `env:"REDIS_URL"`
	Size     int           `env:"MEDIA_CACHE_SIZE,default=1024"`
	TTL      time.Duration `env:"MEDIA_CACHE_TTL,default=1h"`
}

type Poller struct {
	Schedule         string `env:"POLL_SCHEDULE,default=@every 15m"`
	FullRefreshEvery int    `env:"POLL_FULL_REFRESH_EVERY,default=5"`
	Limit            int    `env:"POLL_LIMIT,default=25"`
	Concurrency      int    `env:"POLL_CONCURRENCY,default=4"`
}

type Twilio struct {
	AccountSID string `env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	From       string `env:"TWILIO_FROM"`
}

// Enabled reports whether SMS delivery is configured.
func (t Twilio) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.From != ""
}

// Load reads an optional .env file then decodes the environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return nil, fmt.Errorf("error loading env file: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("error decoding environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "pgx", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Poller.FullRefreshEvery < 1 {
		return fmt.Errorf("POLL_FULL_REFRESH_EVERY must be >= 1")
	}
	if c.Poller.Concurrency < 1 {
		return fmt.Errorf("POLL_CONCURRENCY must be >= 1")
	}
	if c.Reddit.RequestsPerMinute < 1 {
		return fmt.Errorf("REDDIT_REQUESTS_PER_MINUTE must be >= 1")
	}
	return nil
}

// RequireServer checks the settings only the HTTP server needs.
func (c *Config) RequireServer() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET required")
	}
	return nil
}
