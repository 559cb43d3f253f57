// Package config provides configuration types and loading for bufwire.
//
// Configuration is file-based (bufwire.yaml) with environment overrides
// under the BUFWIRE_ prefix. It covers the transport target, the opaque
// HTTP client options forwarded to flush exchanges, extra request headers,
// and the echo server used for local testing.
package config

import (
	"fmt"
	"time"

	"github.com/bufwire/bufwire/pkg/transport"
)

// Config is the top-level configuration for the bufwire CLI.
type Config struct {
	// Target identifies the HTTP endpoint flushes are posted to.
	Target TargetConfig `yaml:"target" mapstructure:"target"`

	// HTTP is forwarded to the underlying HTTP client.
	HTTP HTTPConfig `yaml:"http" mapstructure:"http"`

	// Headers are extra headers sent on every flush, in order.
	Headers []HeaderConfig `yaml:"headers" mapstructure:"headers" validate:"omitempty,dive"`

	// Echo configures the local echo server ("bufwire echo").
	Echo EchoConfig `yaml:"echo" mapstructure:"echo"`

	// LogLevel controls logging verbosity: debug, info, warn, or error.
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// TargetConfig identifies the transport endpoint.
type TargetConfig struct {
	// Host is the target host, without a scheme. Ports are embedded
	// literally (e.g. "rpc.example.com:9090").
	Host string `yaml:"host" mapstructure:"host" validate:"required,schemeless_host"`

	// Path is the target URL path. Must start with "/".
	Path string `yaml:"path" mapstructure:"path" validate:"required,startswith=/"`
}

// HTTPConfig is the opaque HTTP client configuration.
type HTTPConfig struct {
	// Timeout bounds one flush exchange end to end (e.g. "30s").
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty,duration"`

	// Proxy is an optional proxy URL.
	Proxy string `yaml:"proxy" mapstructure:"proxy" validate:"omitempty,url"`

	// MaxResponseBytes caps the response body read per flush.
	MaxResponseBytes int64 `yaml:"max_response_bytes" mapstructure:"max_response_bytes" validate:"omitempty,gt=0"`
}

// HeaderConfig is one extra header name/value pair.
type HeaderConfig struct {
	// Name is the header name. Must be a valid HTTP token.
	Name string `yaml:"name" mapstructure:"name" validate:"required,header_name"`
	// Value is the header value, sent as-is.
	Value string `yaml:"value" mapstructure:"value"`
}

// EchoConfig configures the local echo server.
type EchoConfig struct {
	// Addr is the listen address. Default is localhost-only.
	Addr string `yaml:"addr" mapstructure:"addr" validate:"omitempty,hostname_port"`
}

// SetDefaults fills in default values for unset fields.
func (c *Config) SetDefaults() {
	if c.Target.Path == "" {
		c.Target.Path = "/"
	}
	if c.HTTP.Timeout == "" {
		c.HTTP.Timeout = "30s"
	}
	if c.HTTP.MaxResponseBytes == 0 {
		c.HTTP.MaxResponseBytes = 16 * 1024 * 1024
	}
	if c.Echo.Addr == "" {
		c.Echo.Addr = "127.0.0.1:8471"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// TransportOptions translates the config into the transport's keyed option
// set. Unknown keys cannot originate here; the transport still validates
// the set on construction.
func (c *Config) TransportOptions() (map[string]any, error) {
	timeout, err := time.ParseDuration(c.HTTP.Timeout)
	if err != nil {
		return nil, fmt.Errorf("http.timeout: %w", err)
	}

	options := map[string]any{
		transport.OptionHTTPOptions: transport.HTTPOptions{
			Timeout:          timeout,
			Proxy:            c.HTTP.Proxy,
			MaxResponseBytes: c.HTTP.MaxResponseBytes,
		},
	}

	if len(c.Headers) > 0 {
		headers := make([]transport.Header, 0, len(c.Headers))
		for _, h := range c.Headers {
			headers = append(headers, transport.Header{Name: h.Name, Value: h.Value})
		}
		options[transport.OptionExtraHeaders] = headers
	}

	return options, nil
}
