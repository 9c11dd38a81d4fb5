package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultTokenTTL = 24 * time.Hour

// Config holds the application's configuration. The JWT signing secret is
// deliberately absent from the YAML file: it is a deployment secret and is
// only accepted from the environment.
type Config struct {
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		TokenTTLHours int `yaml:"token_ttl_hours"`
	} `yaml:"auth"`
	Notifications struct {
		Enabled          bool   `yaml:"enabled"`
		TelegramBotToken string `yaml:"telegram_bot_token"`
		ChatID           int64  `yaml:"chat_id"`
	} `yaml:"notifications"`

	// JWTSecret is populated from the JWT_SECRET environment variable.
	JWTSecret []byte `yaml:"-"`
}

// Load reads configuration from the YAML file at configPath and applies
// environment overrides. A .env file in the working directory is honored
// when present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if v := os.Getenv("PORT"); v != "" {
		config.Server.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.Database.URL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		config.Notifications.TelegramBotToken = v
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}
	config.JWTSecret = []byte(secret)

	if config.Server.Port == "" {
		config.Server.Port = ":8080"
	}
	// PORT is commonly set as a bare number; normalize to a listen address.
	if !strings.Contains(config.Server.Port, ":") {
		config.Server.Port = ":" + config.Server.Port
	}
	if config.Auth.TokenTTLHours <= 0 {
		config.Auth.TokenTTLHours = int(defaultTokenTTL / time.Hour)
	}
	if config.Database.URL == "" {
		return nil, errors.New("database URL is required (config file or DATABASE_URL)")
	}

	return config, nil
}

// TokenTTL returns the session token lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}
