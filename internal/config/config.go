package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Session   SessionConfig   `mapstructure:"session"`
	Comments  CommentsConfig  `mapstructure:"comments"`
	Gravatar  GravatarConfig  `mapstructure:"gravatar"`
	API       APIConfig       `mapstructure:"api"`
	Log       LogConfig       `mapstructure:"log"`
	Templates TemplatesConfig `mapstructure:"templates"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	Driver        string        `mapstructure:"driver"` // postgres | sqlite
	DSN           string        `mapstructure:"dsn"`
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`
}

type SessionConfig struct {
	Name   string `mapstructure:"name"`
	Secret string `mapstructure:"secret"`
}

type CommentsConfig struct {
	MaxLength int `mapstructure:"max_length"`
}

type GravatarConfig struct {
	SizeDiscussion int `mapstructure:"size_discussion"`
	CacheSize      int `mapstructure:"cache_size"`
}

type APIConfig struct {
	Domain     string `mapstructure:"domain"`
	MinVersion string `mapstructure:"min_version"`
	MaxVersion string `mapstructure:"max_version"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text | json
}

type TemplatesConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SetDefaults registers every key so env overrides work without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "host=localhost user=postgres password=postgres dbname=osf port=5432 sslmode=disable TimeZone=UTC")
	v.SetDefault("database.slow_threshold", 200*time.Millisecond)
	v.SetDefault("session.name", "osf_session")
	v.SetDefault("session.secret", "secret_key_change_me")
	v.SetDefault("comments.max_length", 500)
	v.SetDefault("gravatar.size_discussion", 20)
	v.SetDefault("gravatar.cache_size", 500)
	v.SetDefault("api.domain", "http://localhost:8000/")
	v.SetDefault("api.min_version", "2.0")
	v.SetDefault("api.max_version", "2.1")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("templates.enabled", true)
}

// Load reads .env, an optional config file and OSF_* environment variables.
// configFile may be empty, in which case ./config.yaml is used when present.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("OSF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// 兼容旧的环境变量
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		v.Set("database.dsn", dsn)
	}
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		v.Set("session.secret", secret)
	}
	if port := os.Getenv("PORT"); port != "" {
		v.Set("server.addr", ":"+port)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Comments.MaxLength <= 0 {
		return fmt.Errorf("comments.max_length must be positive, got %d", c.Comments.MaxLength)
	}
	if c.Gravatar.CacheSize <= 0 {
		return fmt.Errorf("gravatar.cache_size must be positive, got %d", c.Gravatar.CacheSize)
	}
	return nil
}
