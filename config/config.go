package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// ProvidersConfig holds the secrets and endpoints for every external
// payment gateway and VTU provider.
type ProvidersConfig struct {
	Paystack    PaystackConfig    `mapstructure:"paystack"`
	Flutterwave FlutterwaveConfig `mapstructure:"flutterwave"`
	VTU         VTUConfig         `mapstructure:"vtu"`
}

type PaystackConfig struct {
	SecretKey   string `mapstructure:"secret_key"`   // Bearer key for outbound API calls
	WebhookKey  string `mapstructure:"webhook_key"`  // HMAC-SHA512 secret for inbound webhooks
	BaseURL     string `mapstructure:"base_url"`     // https://api.paystack.co
	CallbackURL string `mapstructure:"callback_url"` // Redirect target after checkout
}

type FlutterwaveConfig struct {
	VerifHash string `mapstructure:"verif_hash"` // Static shared secret carried in verif-hash header
}

// VTUConfig holds per-provider webhook secrets and vend endpoints.
// Provider names: vtpass, baxi, clubkonnect.
type VTUConfig struct {
	Secrets  map[string]string `mapstructure:"secrets"`   // provider -> HMAC-SHA256 webhook secret
	BaseURLs map[string]string `mapstructure:"base_urls"` // provider -> vend API base URL
	APIKeys  map[string]string `mapstructure:"api_keys"`  // provider -> vend API key
}

// NotifyConfig holds the notification channel endpoints.
type NotifyConfig struct {
	EmailURL    string `mapstructure:"email_url"` // Transactional mail HTTP API
	EmailAPIKey string `mapstructure:"email_api_key"`
	SMSURL      string `mapstructure:"sms_url"` // SMS gateway HTTP API
	SMSAPIKey   string `mapstructure:"sms_api_key"`
	PushURL     string `mapstructure:"push_url"` // Push relay HTTP API
	PushAPIKey  string `mapstructure:"push_api_key"`
	Workers     int    `mapstructure:"workers"` // Fan-out worker pool size
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: TPW_ (TopUp Pro Wallet).
// Nested keys use underscore: TPW_DATABASE_HOST, TPW_JWT_SECRET, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "topup_pro")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "topup-pro")
	v.SetDefault("providers.paystack.base_url", "https://api.paystack.co")
	v.SetDefault("providers.paystack.secret_key", "")
	v.SetDefault("providers.paystack.webhook_key", "")
	v.SetDefault("providers.flutterwave.verif_hash", "")
	v.SetDefault("notify.workers", 8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: TPW_DATABASE_HOST -> database.host
	v.SetEnvPrefix("TPW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required - env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
