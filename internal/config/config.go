// Package config loads bot configuration from an optional YAML file, with
// environment variables overriding secrets so deployments never need
// credentials on disk.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Record store backends.
const (
	BackendNotion = "notion"
	BackendSQLite = "sqlite"
)

// Config is the full bot configuration.
type Config struct {
	Addr   string       `yaml:"addr"`
	Debug  bool         `yaml:"debug"`
	Slack  SlackConfig  `yaml:"slack"`
	Store  StoreConfig  `yaml:"store"`
	Notion NotionConfig `yaml:"notion"`
}

// SlackConfig holds the messaging transport credentials. SigningSecret may
// be empty to disable request verification (local development only).
type SlackConfig struct {
	BotToken      string `yaml:"bot_token"`
	SigningSecret string `yaml:"signing_secret"`
}

// StoreConfig selects and configures the record store backend.
type StoreConfig struct {
	Backend    string `yaml:"backend"`
	SQLitePath string `yaml:"sqlite_path"`
}

// NotionConfig holds the Notion integration credentials.
type NotionConfig struct {
	APIKey     string `yaml:"api_key"`
	DatabaseID string `yaml:"database_id"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr: ":3000",
		Store: StoreConfig{
			Backend:    BackendSQLite,
			SQLitePath: "nakupko.sqlite3",
		},
	}
}

// Load reads the configuration file (when path is non-empty), applies
// environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SLACK_BOT_TOKEN"); v != "" {
		c.Slack.BotToken = v
	}
	if v := os.Getenv("SLACK_SIGNING_SECRET"); v != "" {
		c.Slack.SigningSecret = v
	}
	if v := os.Getenv("NOTION_API_KEY"); v != "" {
		c.Notion.APIKey = v
	}
	if v := os.Getenv("NOTION_DATABASE_ID"); v != "" {
		c.Notion.DatabaseID = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Addr = ":" + v
	}
}

func (c *Config) validate() error {
	if c.Slack.BotToken == "" {
		return fmt.Errorf("slack bot token required (config slack.bot_token or SLACK_BOT_TOKEN)")
	}

	switch c.Store.Backend {
	case BackendNotion:
		if c.Notion.APIKey == "" || c.Notion.DatabaseID == "" {
			return fmt.Errorf("notion backend requires api key and database id")
		}
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("sqlite backend requires a database path")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}
