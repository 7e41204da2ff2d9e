package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	LogLevel string         `yaml:"log_level"`

	// SessionFile overrides the phone-derived session path.
	SessionFile string `yaml:"session_file"`
	// StyleGuide is the path to the free-text conversation style guide.
	StyleGuide string `yaml:"style_guide"`
}

type TelegramConfig struct {
	APIID    int    `yaml:"api_id"`
	APIHash  string `yaml:"api_hash"`
	Phone    string `yaml:"phone"`
	Password string `yaml:"password"` // 2FA password, optional
}

func Dir() string {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		cfgDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(cfgDir, "mcp-telegram")
}

// Load reads the optional YAML config at path and applies environment
// overrides on top. A missing file is fine; env alone can carry the
// whole configuration.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
		// env-only setup
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.StyleGuide == "" {
		cfg.StyleGuide = "convostyle.txt"
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_API_ID"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TELEGRAM_API_ID must be an integer: %w", err)
		}
		c.Telegram.APIID = id
	}
	if v := os.Getenv("TELEGRAM_API_HASH"); v != "" {
		c.Telegram.APIHash = v
	}
	if v := os.Getenv("TELEGRAM_PHONE"); v != "" {
		c.Telegram.Phone = v
	}
	if v := os.Getenv("TELEGRAM_2FA_PASSWORD"); v != "" {
		c.Telegram.Password = v
	}
	if v := os.Getenv("TELEGRAM_SESSION_FILE"); v != "" {
		c.SessionFile = v
	}
	if v := os.Getenv("TELEGRAM_STYLE_GUIDE"); v != "" {
		c.StyleGuide = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks the credentials every binary needs.
func (c *Config) Validate() error {
	var missing []string
	if c.Telegram.APIID == 0 {
		missing = append(missing, "TELEGRAM_API_ID")
	}
	if c.Telegram.APIHash == "" {
		missing = append(missing, "TELEGRAM_API_HASH")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s (get API credentials from https://my.telegram.org/apps)",
			strings.Join(missing, ", "))
	}
	return nil
}

// SessionPath returns the configured session file, or the default path
// derived from the phone number under the config dir.
func (c *Config) SessionPath() string {
	if c.SessionFile != "" {
		return c.SessionFile
	}
	phone := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, c.Telegram.Phone)
	if phone == "" {
		phone = "default"
	}
	return filepath.Join(Dir(), "session_"+phone+".json")
}
