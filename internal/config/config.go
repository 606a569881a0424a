package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	AI       AIConfig       `mapstructure:"ai"`
	Lexicon  LexiconConfig  `mapstructure:"lexicon"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

type ServerConfig struct {
	Port       int             `mapstructure:"port"`
	Mode       string          `mapstructure:"mode"`
	AdminToken string          `mapstructure:"admin_token"`
	CORS       CORSConfig      `mapstructure:"cors"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// RateLimitConfig limits requests per client IP on routes that may reach the model.
// RPS <= 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, sqlite-pure, postgres
	URL             string        `mapstructure:"url"`
	AuthToken       string        `mapstructure:"auth_token"`
	Path            string        `mapstructure:"path"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type LexiconConfig struct {
	SeedOnStart bool     `mapstructure:"seed_on_start"`
	SeedWords   []string `mapstructure:"seed_words"`
	SeedObject  string   `mapstructure:"seed_object"` // optional object key holding a word list
}

type StorageConfig struct {
	Type       string `mapstructure:"type"`
	Endpoint   string `mapstructure:"endpoint"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	UseSSL     bool   `mapstructure:"use_ssl"`
	Bucket     string `mapstructure:"bucket"`
	Region     string `mapstructure:"region"`
	LexiconKey string `mapstructure:"lexicon_key"`
}

// Enabled reports whether object storage has been configured.
func (c *StorageConfig) Enabled() bool {
	return c.Bucket != ""
}

// DefaultSeedWords is the starter lexicon installed on an empty database.
var DefaultSeedWords = []string{
	"ass", "bastard", "bitch", "damn", "fuck",
	"shit", "crap", "hell", "dick", "piss",
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.mode", "GIN_MODE")
	v.BindEnv("server.admin_token", "ADMIN_TOKEN")
	v.BindEnv("server.cors.allowed_origins", "CORS_ORIGIN")
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("database.auth_token", "DATABASE_AUTH_TOKEN")
	v.BindEnv("ai.api_key", "GOOGLE_API_KEY")
	v.BindEnv("ai.model", "GENAI_MODEL")
	v.BindEnv("ai.base_url", "GENAI_BASE_URL")
	v.BindEnv("storage.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.access_key", "S3_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "S3_SECRET_KEY")
	v.BindEnv("storage.bucket", "S3_BUCKET")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.AI.ResolveEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", false)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("server.rate_limit.rps", 5.0)
	v.SetDefault("server.rate_limit.burst", 10)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/modguard.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-1.5-flash")
	v.SetDefault("ai.timeout", 20*time.Second)
	v.SetDefault("ai.max_tokens", 400)
	v.SetDefault("ai.temperature", 0.0)
	v.SetDefault("lexicon.seed_on_start", true)
	v.SetDefault("lexicon.seed_words", DefaultSeedWords)
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.lexicon_key", "lexicon/swear_words.txt")
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server: invalid port %d", c.Server.Port)
	}
	if _, _, err := c.Database.Resolve(); err != nil {
		return err
	}
	return c.AI.Validate()
}

// Resolve determines the driver and DSN to open. DATABASE_URL wins over
// driver/path when set.
func (c *DatabaseConfig) Resolve() (driver string, dsn string, err error) {
	if c.URL == "" {
		driver = c.Driver
		if driver == "" {
			driver = "sqlite"
		}
		switch driver {
		case "sqlite", "sqlite-pure":
			return driver, c.Path, nil
		case "postgres":
			return "", "", fmt.Errorf("database: postgres driver requires database.url")
		default:
			return "", "", fmt.Errorf("database: unknown driver %q", driver)
		}
	}

	switch {
	case strings.HasPrefix(c.URL, "postgres://"), strings.HasPrefix(c.URL, "postgresql://"):
		dsn, err := withPassword(c.URL, c.AuthToken)
		if err != nil {
			return "", "", err
		}
		return "postgres", dsn, nil
	case strings.HasPrefix(c.URL, "sqlite://"):
		driver = "sqlite"
		if c.Driver == "sqlite-pure" {
			driver = "sqlite-pure"
		}
		return driver, strings.TrimPrefix(c.URL, "sqlite://"), nil
	default:
		return "", "", fmt.Errorf("database: unsupported url scheme in %q", redact(c.URL))
	}
}

// withPassword injects the auth token as the password of a postgres URL that
// carries none.
func withPassword(raw, token string) (string, error) {
	if token == "" {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("database: invalid url: %w", err)
	}
	if u.User == nil {
		return raw, nil
	}
	if _, ok := u.User.Password(); ok {
		return raw, nil
	}
	u.User = url.UserPassword(u.User.Username(), token)
	return u.String(), nil
}

func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid>"
	}
	return u.Redacted()
}
