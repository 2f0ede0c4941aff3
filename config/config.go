package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const DefaultPort = "5890"

// Config is read by viper from an optional config file and the environment.
type Config struct {
	Port           string   `mapstructure:"port"`
	LogLevel       string   `mapstructure:"log_level"`
	GinMode        string   `mapstructure:"gin_mode"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`

	// ProxyHops is how many reverse proxies sit in front of the server.
	// The rate limiter keys on the address that many hops out.
	ProxyHops int `mapstructure:"proxy_hops"`

	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Store     StoreConfig     `mapstructure:"store"`
	Game      GameConfig      `mapstructure:"game"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Provider    string        `mapstructure:"provider"` // "sdk" | "http"
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	TopP        float32       `mapstructure:"top_p"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type StoreConfig struct {
	// "dynamodb" | "mongodb" | "postgres" | "memory"; inferred from URI when unset.
	Driver     string `mapstructure:"driver"`
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
	Region     string `mapstructure:"region"`
	// Static credentials are only used together with a custom endpoint (local DynamoDB).
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type GameConfig struct {
	TurnCap int `mapstructure:"turn_cap"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Window  time.Duration `mapstructure:"window"`
	Max     int           `mapstructure:"max"`
	Message string        `mapstructure:"message"`
}

// LoadConfig reads configuration from file or environment variables.
// An empty configPath searches ./config.yaml and falls back to defaults.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetDefault("port", DefaultPort)
	v.SetDefault("log_level", "info")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("trusted_proxies", []string{"127.0.0.1", "::1"})
	v.SetDefault("proxy_hops", 1)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.provider", "sdk")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-3.5-turbo")
	v.SetDefault("openai.temperature", 1.0)
	v.SetDefault("openai.top_p", 1.0)
	v.SetDefault("openai.max_tokens", 0)
	v.SetDefault("openai.timeout", "60s")

	v.SetDefault("store.driver", "")
	v.SetDefault("store.uri", "")
	v.SetDefault("store.database", "mindguesser")
	v.SetDefault("store.collection", "conversations")
	v.SetDefault("store.region", "us-east-1")
	v.SetDefault("store.access_key_id", "")
	v.SetDefault("store.secret_access_key", "")

	v.SetDefault("game.turn_cap", 20)

	v.SetDefault("cors.allowed_origins", []string{"https://mindguesser.com", "https://www.mindguesser.com"})

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.window", "15m")
	v.SetDefault("rate_limit.max", 100)
	v.SetDefault("rate_limit.message", "Too many requests from this IP, please try again after 15 minutes")

	v.AutomaticEnv()
	// e.g. openai.api_key -> OPENAI_API_KEY
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv("store.uri", "STORE_URI", "MONGODB_URI", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("bind store uri: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = DefaultPort
	}
	if strings.TrimSpace(cfg.Store.Driver) == "" {
		cfg.Store.Driver = driverForURI(cfg.Store.URI)
	}
	if cfg.Game.TurnCap <= 0 {
		cfg.Game.TurnCap = 20
	}
	return &cfg, nil
}

// driverForURI picks a store driver from the connection string scheme.
// Anything else, including an empty URI or a custom DynamoDB endpoint, is dynamodb.
func driverForURI(uri string) string {
	uri = strings.ToLower(strings.TrimSpace(uri))
	switch {
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		return "mongodb"
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return "postgres"
	default:
		return "dynamodb"
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}
