package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds infrastructure settings sourced from the environment:
// credentials and endpoints that must not live in the feature config file.
type Config struct {
	DiscordToken   string
	ServemeAPIKey  string
	ServemeBaseURL string
	ConfigPath     string
	StatusAddr     string
	DBPath         string
}

const defaultServemeBaseURL = "https://serveme.tf/api/reservations"

// Load loads configuration from environment variables only.
func Load() (*Config, error) {
	return LoadWithFile("")
}

// LoadWithFile loads configuration from an optional .env file and environment variables.
func LoadWithFile(envFile string) (*Config, error) {
	// Attempt to load .env file if provided, but don't fail if it doesn't exist.
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		DiscordToken:   os.Getenv("DISCORD_BOT_TOKEN"),
		ServemeAPIKey:  os.Getenv("SERVEME_API_KEY"),
		ServemeBaseURL: getEnvOrDefault("SERVEME_BASE_URL", defaultServemeBaseURL),
		ConfigPath:     getEnvOrDefault("CONFIG_PATH", "./data/servebot.toml"),
		StatusAddr:     os.Getenv("STATUS_ADDR"),
		DBPath:         os.Getenv("DB_PATH"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required fields are set.
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}
	if c.ServemeAPIKey == "" {
		return fmt.Errorf("SERVEME_API_KEY is required")
	}
	if c.ServemeBaseURL == "" {
		return fmt.Errorf("SERVEME_BASE_URL is required")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
