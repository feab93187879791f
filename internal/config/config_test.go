package config

import (
	"os"
	"path/filepath"
	"testing"
)

// clearEnv blanks every variable Load reads so tests control the surface.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PIHOLE_API_URL", "PIHOLE_API_TOKEN", "HOSTNAME_SUFFIX",
		"LOG_FILE", "PIHOLE_SKIP_TLS_VERIFY", "TAILSYNC_CONFIG_PATH",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadFromPath_EnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("PIHOLE_API_TOKEN", "token123")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.StoreURL != DefaultStoreURL {
		t.Errorf("expected default store URL %q, got %q", DefaultStoreURL, cfg.StoreURL)
	}
	if cfg.APIToken != "token123" {
		t.Errorf("expected token 'token123', got %q", cfg.APIToken)
	}
	if cfg.Suffix != DefaultSuffix {
		t.Errorf("expected default suffix %q, got %q", DefaultSuffix, cfg.Suffix)
	}
	if cfg.LogFile != DefaultLogFile {
		t.Errorf("expected default log file %q, got %q", DefaultLogFile, cfg.LogFile)
	}
}

func TestLoadFromPath_MissingTokenIsFatal(t *testing.T) {
	clearEnv(t)

	_, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing API token, got nil")
	}
}

func TestLoadFromPath_FileValues(t *testing.T) {
	clearEnv(t)
	content := `store_url: "https://pihole.lan/api"
api_token: "filetoken"
suffix: ".lan"
log_file: "/var/log/tailsync.log"
skip_tls_verify: true
`
	path := filepath.Join(t.TempDir(), "tailsync.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.StoreURL != "https://pihole.lan/api" {
		t.Errorf("expected store URL from file, got %q", cfg.StoreURL)
	}
	if cfg.APIToken != "filetoken" {
		t.Errorf("expected token from file, got %q", cfg.APIToken)
	}
	if cfg.Suffix != ".lan" {
		t.Errorf("expected suffix from file, got %q", cfg.Suffix)
	}
	if !cfg.SkipTLSVerify {
		t.Error("expected skip_tls_verify from file")
	}
}

func TestLoadFromPath_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	content := `store_url: "https://pihole.lan/api"
api_token: "filetoken"
`
	path := filepath.Join(t.TempDir(), "tailsync.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PIHOLE_API_URL", "https://other.lan/api")
	t.Setenv("PIHOLE_API_TOKEN", "envtoken")

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.StoreURL != "https://other.lan/api" {
		t.Errorf("expected env to override file store URL, got %q", cfg.StoreURL)
	}
	if cfg.APIToken != "envtoken" {
		t.Errorf("expected env to override file token, got %q", cfg.APIToken)
	}
}

func TestLoadFromPath_ExpandsEnvInFileValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRET_TOKEN", "expanded123")
	content := "api_token: \"${SECRET_TOKEN}\"\n"
	path := filepath.Join(t.TempDir(), "tailsync.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIToken != "expanded123" {
		t.Errorf("expected expanded token 'expanded123', got %q", cfg.APIToken)
	}
}

func TestLoadFromPath_MalformedFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "tailsync.yaml")
	if err := os.WriteFile(path, []byte(":\tnot yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected error for malformed config file, got nil")
	}
}

func TestStoreSettings(t *testing.T) {
	cfg := &Config{StoreURL: "http://pi.hole/api", APIToken: "token123", SkipTLSVerify: true}

	settings := cfg.StoreSettings()
	if settings["base_url"] != "http://pi.hole/api" {
		t.Errorf("expected base_url setting, got %q", settings["base_url"])
	}
	if settings["api_token"] != "token123" {
		t.Errorf("expected api_token setting, got %q", settings["api_token"])
	}
	if settings["skip_tls_verify"] != "true" {
		t.Errorf("expected skip_tls_verify setting, got %q", settings["skip_tls_verify"])
	}
}
