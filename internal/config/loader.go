package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"

	"grimm.is/wingwifi/internal/brand"
)

// ErrNotFound is returned when the config file does not exist.
var ErrNotFound = errors.New("configuration file not found")

// LoadFile reads, normalizes and validates a config file.
// The format is chosen by extension; unknown extensions try JSON, then HCL.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		cfg, err = LoadHCL(data, path)
	case ".json":
		cfg, err = LoadJSON(data)
	default:
		cfg, err = LoadJSON(data)
		if err != nil {
			cfg, err = LoadHCL(data, path)
		}
	}
	if err != nil {
		return nil, err
	}

	ApplyEnv(cfg)
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadHCL decodes config from HCL bytes without validating it.
func LoadHCL(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("HCL parse error: %s", diags.Error())
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("HCL decode error: %s", diags.Error())
	}
	return &cfg, nil
}

// LoadJSON decodes config from JSON bytes without validating it.
func LoadJSON(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("JSON parse error: %w", err)
	}
	return &cfg, nil
}

// LoadDotEnv loads a .env file into the process environment.
// Variables already set are not overridden; a missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays WINGWIFI_* environment variables onto cfg.
func ApplyEnv(cfg *Config) {
	env := func(name string) string {
		return os.Getenv(brand.ConfigEnvPrefix + "_" + name)
	}

	if v := env("USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := env("PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := env("LOCATION"); v != "" {
		cfg.Location = v
	}
	if v := env("SITE"); v != "" {
		cfg.Site = v
	}
	if v := env("PRINTER_IP"); v != "" {
		cfg.PrinterIP = v
	}
	if v := env("LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := env("LOG_LEVEL"); v != "" {
		if cfg.Log == nil {
			cfg.Log = &LogConfig{}
		}
		cfg.Log.Level = v
	}
}
