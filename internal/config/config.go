package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/deskdial/deskdial/internal/theme"
)

// Defaults. The bridge port was picked once and is part of the client
// contract; changing it breaks every external tool pointed at the bridge.
const (
	DefaultPort    = 8791
	DefaultBaseURL = "https://voice.google.com"
)

// Config is the persisted application configuration. Loading clamps invalid
// values to defaults; this file is the outermost boundary and the only
// place where silent correction is acceptable. The bridge itself rejects
// invalid ports with a typed error.
type Config struct {
	Bridge struct {
		Port int `yaml:"port"`
	} `yaml:"bridge"`
	Page struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"page"`
	Theme string `yaml:"theme"`
	Quiet bool   `yaml:"quiet"`
}

// Load reads a YAML config file, expanding ${ENV} references. A missing
// file yields the defaults, not an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return withDefaults(Config{}), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses YAML config bytes with environment variable expansion.
func LoadFromBytes(data []byte) (Config, error) {
	var c Config
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return withDefaults(c), nil
}

func withDefaults(c Config) Config {
	if c.Bridge.Port < 1 || c.Bridge.Port > 65535 {
		c.Bridge.Port = DefaultPort
	}
	if c.Page.BaseURL == "" {
		c.Page.BaseURL = DefaultBaseURL
	}
	if !theme.Valid(c.Theme) {
		c.Theme = string(theme.Default)
	}
	return c
}
