package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Payment   PaymentConfig
	AI        AIConfig
	Checkout  CheckoutConfig
	Scheduler SchedulerConfig
	SEO       SEOConfig
}

// SEOConfig controls the public indexing surfaces
type SEOConfig struct {
	IndexingEnabled bool // when off, robots.txt disallows everything
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Port    string
	BaseURL string // public base URL, used for sitemap and payment callbacks
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds session token settings
type JWTConfig struct {
	Secret          string
	TokenExpiration time.Duration
	Issuer          string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	RateLimitEnabled bool
	// Per-minute budgets per limiter class
	RateLimitChatAuth   int
	RateLimitChatAnon   int
	RateLimitAdminWrite int
	RateLimitPublicRead int
	CORSAllowOrigins    []string
	CORSAllowMethods    []string
	CORSAllowHeaders    []string
	TrustedProxies      []string
}

// PaymentConfig holds payment provider credentials and webhook secrets
type PaymentConfig struct {
	PendingTimeout time.Duration // pending transactions older than this are expired
	Flouci         ProviderConfig
	Konnect        ProviderConfig
	Stripe         ProviderConfig
}

// ProviderConfig holds one payment provider's credentials
type ProviderConfig struct {
	Enabled       bool
	APIKey        string
	SecretKey     string
	WebhookSecret string
	BaseURL       string
}

// AIConfig holds assistant request settings
type AIConfig struct {
	RequestTimeout  time.Duration // upstream LLM call timeout
	ConversationTTL time.Duration // idle conversations older than this are purged
}

// CheckoutConfig holds storefront checkout tuning
type CheckoutConfig struct {
	FreeShippingThreshold string // TND amount, empty disables free shipping
	DefaultTaxRate        string // e.g. "0.19"
}

// SchedulerConfig holds background sweeper configuration
type SchedulerConfig struct {
	Enabled                     bool
	ReservationSweepInterval    time.Duration
	PaymentSweepInterval        time.Duration
	ConversationCleanupInterval time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with QUELYOS_ prefix (e.g., QUELYOS_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("QUELYOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			BaseURL: v.GetString("app.base_url"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("jwt.secret"),
			TokenExpiration: v.GetDuration("jwt.token_expiration"),
			Issuer:          v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			RateLimitEnabled:    v.GetBool("http.rate_limit_enabled"),
			RateLimitChatAuth:   v.GetInt("http.rate_limit_chat_auth"),
			RateLimitChatAnon:   v.GetInt("http.rate_limit_chat_anon"),
			RateLimitAdminWrite: v.GetInt("http.rate_limit_admin_write"),
			RateLimitPublicRead: v.GetInt("http.rate_limit_public_read"),
			CORSAllowOrigins:    v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:    v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:    v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:      v.GetStringSlice("http.trusted_proxies"),
		},
		Payment: PaymentConfig{
			PendingTimeout: v.GetDuration("payment.pending_timeout"),
			Flouci: ProviderConfig{
				Enabled:       v.GetBool("payment.flouci.enabled"),
				APIKey:        v.GetString("payment.flouci.api_key"),
				SecretKey:     v.GetString("payment.flouci.secret_key"),
				WebhookSecret: v.GetString("payment.flouci.webhook_secret"),
				BaseURL:       v.GetString("payment.flouci.base_url"),
			},
			Konnect: ProviderConfig{
				Enabled:       v.GetBool("payment.konnect.enabled"),
				APIKey:        v.GetString("payment.konnect.api_key"),
				SecretKey:     v.GetString("payment.konnect.secret_key"),
				WebhookSecret: v.GetString("payment.konnect.webhook_secret"),
				BaseURL:       v.GetString("payment.konnect.base_url"),
			},
			Stripe: ProviderConfig{
				Enabled:       v.GetBool("payment.stripe.enabled"),
				APIKey:        v.GetString("payment.stripe.api_key"),
				SecretKey:     v.GetString("payment.stripe.secret_key"),
				WebhookSecret: v.GetString("payment.stripe.webhook_secret"),
				BaseURL:       v.GetString("payment.stripe.base_url"),
			},
		},
		AI: AIConfig{
			RequestTimeout:  v.GetDuration("ai.request_timeout"),
			ConversationTTL: v.GetDuration("ai.conversation_ttl"),
		},
		Checkout: CheckoutConfig{
			FreeShippingThreshold: v.GetString("checkout.free_shipping_threshold"),
			DefaultTaxRate:        v.GetString("checkout.default_tax_rate"),
		},
		Scheduler: SchedulerConfig{
			Enabled:                     v.GetBool("scheduler.enabled"),
			ReservationSweepInterval:    v.GetDuration("scheduler.reservation_sweep_interval"),
			PaymentSweepInterval:        v.GetDuration("scheduler.payment_sweep_interval"),
			ConversationCleanupInterval: v.GetDuration("scheduler.conversation_cleanup_interval"),
		},
		SEO: SEOConfig{
			IndexingEnabled: v.GetBool("seo.indexing_enabled"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "quelyos-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = "http://localhost:" + cfg.App.Port
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "quelyos"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.TokenExpiration == 0 {
		cfg.JWT.TokenExpiration = 24 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "quelyos-backend"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.HTTP.RateLimitChatAuth == 0 {
		cfg.HTTP.RateLimitChatAuth = 20
	}
	if cfg.HTTP.RateLimitChatAnon == 0 {
		cfg.HTTP.RateLimitChatAnon = 5
	}
	if cfg.HTTP.RateLimitAdminWrite == 0 {
		cfg.HTTP.RateLimitAdminWrite = 120
	}
	if cfg.HTTP.RateLimitPublicRead == 0 {
		cfg.HTTP.RateLimitPublicRead = 300
	}
	// NOTE: CORS origins are intentionally not given a default fallback to "*".
	// An empty list means no cross-origin requests are allowed until explicitly configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Tenant-ID", "X-Client-Key"}
	}
	if cfg.Payment.PendingTimeout == 0 {
		cfg.Payment.PendingTimeout = 30 * time.Minute
	}
	if cfg.Payment.Flouci.BaseURL == "" {
		cfg.Payment.Flouci.BaseURL = "https://developers.flouci.com/api"
	}
	if cfg.Payment.Konnect.BaseURL == "" {
		cfg.Payment.Konnect.BaseURL = "https://api.konnect.network/api/v2"
	}
	if cfg.AI.RequestTimeout == 0 {
		cfg.AI.RequestTimeout = 30 * time.Second
	}
	if cfg.AI.ConversationTTL == 0 {
		cfg.AI.ConversationTTL = 24 * time.Hour
	}
	if cfg.Checkout.DefaultTaxRate == "" {
		cfg.Checkout.DefaultTaxRate = "0.19"
	}
	if cfg.Scheduler.ReservationSweepInterval == 0 {
		cfg.Scheduler.ReservationSweepInterval = 5 * time.Minute
	}
	if cfg.Scheduler.PaymentSweepInterval == 0 {
		cfg.Scheduler.PaymentSweepInterval = 5 * time.Minute
	}
	if cfg.Scheduler.ConversationCleanupInterval == 0 {
		cfg.Scheduler.ConversationCleanupInterval = time.Hour
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Payment.Flouci.Enabled && c.Payment.Flouci.WebhookSecret == "" {
			return fmt.Errorf("payment.flouci.webhook_secret is required when flouci is enabled in production")
		}
		if c.Payment.Konnect.Enabled && c.Payment.Konnect.WebhookSecret == "" {
			return fmt.Errorf("payment.konnect.webhook_secret is required when konnect is enabled in production")
		}
		if c.Payment.Stripe.Enabled && c.Payment.Stripe.WebhookSecret == "" {
			return fmt.Errorf("payment.stripe.webhook_secret is required when stripe is enabled in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis address in host:port form
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
