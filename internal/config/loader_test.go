package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

// writeConfigFile writes a temp YAML config and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bufwire.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadConfig_FromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := writeConfigFile(t, `
target:
  host: rpc.example.com:9090
  path: /rpc/v1
http:
  timeout: 5s
headers:
  - name: X-Tenant
    value: acme
log_level: debug
`)
	InitViper(path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Target.Host != "rpc.example.com:9090" {
		t.Errorf("Target.Host = %q", cfg.Target.Host)
	}
	if cfg.Target.Path != "/rpc/v1" {
		t.Errorf("Target.Path = %q", cfg.Target.Path)
	}
	if cfg.HTTP.Timeout != "5s" {
		t.Errorf("HTTP.Timeout = %q", cfg.HTTP.Timeout)
	}
	if len(cfg.Headers) != 1 || cfg.Headers[0].Name != "X-Tenant" {
		t.Errorf("Headers = %v", cfg.Headers)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if ConfigFileUsed() != path {
		t.Errorf("ConfigFileUsed() = %q, want %q", ConfigFileUsed(), path)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := writeConfigFile(t, `
target:
  host: rpc.example.com
  path: /rpc
`)
	t.Setenv("BUFWIRE_TARGET_HOST", "override.example.com")
	t.Setenv("BUFWIRE_HTTP_TIMEOUT", "2s")
	InitViper(path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Target.Host != "override.example.com" {
		t.Errorf("Target.Host = %q, want env override", cfg.Target.Host)
	}
	if cfg.HTTP.Timeout != "2s" {
		t.Errorf("HTTP.Timeout = %q, want env override", cfg.HTTP.Timeout)
	}
}

func TestLoadConfig_InvalidConfigFails(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := writeConfigFile(t, `
target:
  host: http://rpc.example.com
  path: /rpc
`)
	InitViper(path)

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() with scheme-carrying host should fail validation")
	}
}

func TestLoadConfig_MissingFileFallsBackToEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir() failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	t.Setenv("BUFWIRE_TARGET_HOST", "env-only.example.com")
	InitViper("")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() without a file failed: %v", err)
	}
	if cfg.Target.Host != "env-only.example.com" {
		t.Errorf("Target.Host = %q, want env-only host", cfg.Target.Host)
	}
}
