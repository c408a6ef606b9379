// Package config assembles runtime configuration from an optional YAML file,
// a .env file and process environment, in that order of increasing
// precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// ListenAddr is the HTTP bind address.
	ListenAddr string `yaml:"listen_addr"`

	// DBPath is the SQLite database file; ":memory:" is accepted.
	DBPath string `yaml:"db_path"`

	// Debug switches the logger to development config at debug level.
	Debug bool `yaml:"debug"`
}

// Merge overlays non-zero fields from the override onto the base config.
func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.ListenAddr) != "" {
		result.ListenAddr = strings.TrimSpace(override.ListenAddr)
	}
	if strings.TrimSpace(override.DBPath) != "" {
		result.DBPath = strings.TrimSpace(override.DBPath)
	}
	if override.Debug {
		result.Debug = true
	}
	return result
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.DBPath == "" {
		c.DBPath = "costbook.db"
	}
}

// Load reads configuration. A .env file in the working directory is applied
// to the environment first when present; COSTBOOK_CONFIG_FILE names an
// optional YAML file; COSTBOOK_* variables override everything.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if path := strings.TrimSpace(os.Getenv("COSTBOOK_CONFIG_FILE")); path != "" {
		fileCfg, err := loadConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = cfg.Merge(fileCfg)
	}
	cfg = cfg.Merge(loadConfigEnv())
	cfg.applyDefaults()
	return cfg, nil
}

func loadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func loadConfigEnv() Config {
	cfg := Config{
		ListenAddr: os.Getenv("COSTBOOK_LISTEN_ADDR"),
		DBPath:     os.Getenv("COSTBOOK_DB_PATH"),
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("COSTBOOK_DEBUG"))) {
	case "1", "true", "yes":
		cfg.Debug = true
	}
	return cfg
}
