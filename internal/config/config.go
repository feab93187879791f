package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Defaults for everything except the API token, which has none.
const (
	DefaultStoreURL = "http://pi.hole/api"
	DefaultSuffix   = ".ts"
	DefaultLogFile  = "./tailsync.log"
)

// Config holds the full runtime configuration. It is built once at startup
// and passed into the components that need it.
type Config struct {
	// StoreURL is the base URL of the DNS store API.
	StoreURL string `yaml:"store_url"`
	// APIToken authenticates against the store. Required.
	APIToken string `yaml:"api_token"`
	// Suffix is appended to each peer's first DNS label to form the
	// published domain.
	Suffix string `yaml:"suffix"`
	// LogFile is the append-only log destination, alongside stdout.
	LogFile string `yaml:"log_file"`
	// SkipTLSVerify disables certificate verification against the store.
	SkipTLSVerify bool `yaml:"skip_tls_verify"`
}

// StoreSettings renders the store-related fields as a settings map for the
// store factory.
func (c *Config) StoreSettings() map[string]string {
	settings := map[string]string{
		"base_url":  c.StoreURL,
		"api_token": c.APIToken,
	}
	if c.SkipTLSVerify {
		settings["skip_tls_verify"] = "true"
	}
	return settings
}

// Load builds the configuration from an optional YAML base file overlaid
// with environment variables. The file path comes from TAILSYNC_CONFIG_PATH,
// defaulting to "configs/tailsync.yaml"; a missing file is not an error.
// Environment variables always win over file values.
func Load() (*Config, error) {
	path := os.Getenv("TAILSYNC_CONFIG_PATH")
	if path == "" {
		path = "configs/tailsync.yaml"
	}
	return LoadFromPath(path)
}

// LoadFromPath builds the configuration using the given YAML base file.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{
		StoreURL: DefaultStoreURL,
		Suffix:   DefaultSuffix,
		LogFile:  DefaultLogFile,
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No base file; environment only.
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		// Expand ${ENV_VAR} references in file values before decoding.
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if v := os.Getenv("PIHOLE_API_URL"); v != "" {
		cfg.StoreURL = v
	}
	if v := os.Getenv("PIHOLE_API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v := os.Getenv("HOSTNAME_SUFFIX"); v != "" {
		cfg.Suffix = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("PIHOLE_SKIP_TLS_VERIFY"); v == "true" {
		cfg.SkipTLSVerify = true
	}

	if cfg.APIToken == "" {
		return nil, fmt.Errorf("config: missing required API token (set PIHOLE_API_TOKEN)")
	}

	return cfg, nil
}
