package config

import (
	"strings"
	"testing"
	"time"

	"github.com/bufwire/bufwire/pkg/transport"
)

func TestConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.SetDefaults()

	if cfg.Target.Path != "/" {
		t.Errorf("Target.Path = %q, want %q", cfg.Target.Path, "/")
	}
	if cfg.HTTP.Timeout != "30s" {
		t.Errorf("HTTP.Timeout = %q, want %q", cfg.HTTP.Timeout, "30s")
	}
	if cfg.HTTP.MaxResponseBytes != 16*1024*1024 {
		t.Errorf("HTTP.MaxResponseBytes = %d, want 16MB", cfg.HTTP.MaxResponseBytes)
	}
	if cfg.Echo.Addr != "127.0.0.1:8471" {
		t.Errorf("Echo.Addr = %q, want localhost default", cfg.Echo.Addr)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestConfig_SetDefaults_PreservesExistingValues(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Target:   TargetConfig{Host: "rpc.example.com", Path: "/rpc"},
		HTTP:     HTTPConfig{Timeout: "5s", MaxResponseBytes: 1024},
		LogLevel: "debug",
	}
	cfg.SetDefaults()

	if cfg.Target.Path != "/rpc" {
		t.Errorf("Target.Path = %q, want preserved %q", cfg.Target.Path, "/rpc")
	}
	if cfg.HTTP.Timeout != "5s" {
		t.Errorf("HTTP.Timeout = %q, want preserved %q", cfg.HTTP.Timeout, "5s")
	}
	if cfg.HTTP.MaxResponseBytes != 1024 {
		t.Errorf("HTTP.MaxResponseBytes = %d, want preserved 1024", cfg.HTTP.MaxResponseBytes)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want preserved %q", cfg.LogLevel, "debug")
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		cfg := Config{Target: TargetConfig{Host: "rpc.example.com:9090", Path: "/rpc"}}
		cfg.SetDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing host",
			mutate:  func(c *Config) { c.Target.Host = "" },
			wantErr: "Target.Host",
		},
		{
			name:    "host with scheme",
			mutate:  func(c *Config) { c.Target.Host = "http://rpc.example.com" },
			wantErr: "without a scheme",
		},
		{
			name:    "path without leading slash",
			mutate:  func(c *Config) { c.Target.Path = "rpc" },
			wantErr: "must start with",
		},
		{
			name:    "bad timeout",
			mutate:  func(c *Config) { c.HTTP.Timeout = "soon" },
			wantErr: "duration",
		},
		{
			name:    "bad proxy url",
			mutate:  func(c *Config) { c.HTTP.Proxy = "::not-a-url::" },
			wantErr: "valid URL",
		},
		{
			name:    "negative response cap",
			mutate:  func(c *Config) { c.HTTP.MaxResponseBytes = -1 },
			wantErr: "greater than",
		},
		{
			name: "bad header name",
			mutate: func(c *Config) {
				c.Headers = []HeaderConfig{{Name: "X Tenant", Value: "acme"}}
			},
			wantErr: "header name",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "loud" },
			wantErr: "one of",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_TransportOptions(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Target: TargetConfig{Host: "rpc.example.com", Path: "/rpc"},
		HTTP:   HTTPConfig{Timeout: "5s", Proxy: "http://proxy.internal:3128", MaxResponseBytes: 2048},
		Headers: []HeaderConfig{
			{Name: "X-Tenant", Value: "acme"},
			{Name: "Authorization", Value: "Bearer tok"},
		},
	}

	options, err := cfg.TransportOptions()
	if err != nil {
		t.Fatalf("TransportOptions() failed: %v", err)
	}

	ho, ok := options[transport.OptionHTTPOptions].(transport.HTTPOptions)
	if !ok {
		t.Fatalf("missing %s option", transport.OptionHTTPOptions)
	}
	if ho.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", ho.Timeout)
	}
	if ho.Proxy != "http://proxy.internal:3128" {
		t.Errorf("Proxy = %q", ho.Proxy)
	}
	if ho.MaxResponseBytes != 2048 {
		t.Errorf("MaxResponseBytes = %d, want 2048", ho.MaxResponseBytes)
	}

	headers, ok := options[transport.OptionExtraHeaders].([]transport.Header)
	if !ok {
		t.Fatalf("missing %s option", transport.OptionExtraHeaders)
	}
	if len(headers) != 2 || headers[0].Name != "X-Tenant" || headers[1].Name != "Authorization" {
		t.Errorf("headers = %v, want ordered X-Tenant then Authorization", headers)
	}

	// The keyed set round-trips through transport construction.
	if _, err := transport.NewHTTPTransportFromOptions(cfg.Target.Host, cfg.Target.Path, options); err != nil {
		t.Errorf("NewHTTPTransportFromOptions() with config-derived options failed: %v", err)
	}
}

func TestConfig_TransportOptions_BadTimeout(t *testing.T) {
	t.Parallel()

	cfg := Config{HTTP: HTTPConfig{Timeout: "whenever"}}
	if _, err := cfg.TransportOptions(); err == nil {
		t.Error("TransportOptions() with bad timeout should fail")
	}
}
