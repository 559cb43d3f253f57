package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment variables.
// If configFile is empty, it searches for bufwire.yaml/.yml in standard locations.
// The search requires an explicit YAML extension to avoid matching the binary
// itself, which Viper's built-in SetConfigName would match (same base name,
// no extension).
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// No config file found in any standard location.
		// Set name/type without search paths so ReadInConfig returns
		// ConfigFileNotFoundError (handled gracefully by callers).
		viper.SetConfigName("bufwire")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: BUFWIRE_TARGET_HOST
	viper.SetEnvPrefix("BUFWIRE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for a bufwire config file with
// an explicit YAML extension (.yaml or .yml).
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".bufwire"),
		"/etc/bufwire",
	}
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "bufwire"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds nested config keys for environment variable support.
// Example: BUFWIRE_TARGET_HOST overrides target.host.
func bindNestedEnvKeys() {
	_ = viper.BindEnv("target.host")
	_ = viper.BindEnv("target.path")

	_ = viper.BindEnv("http.timeout")
	_ = viper.BindEnv("http.proxy")
	_ = viper.BindEnv("http.max_response_bytes")

	// Note: headers is an array, complex to override via env.
	// Users should use the config file for headers.

	_ = viper.BindEnv("echo.addr")
	_ = viper.BindEnv("log_level")
}

// LoadConfig reads the configuration file, applies environment overrides,
// sets defaults, validates, and returns the Config.
func LoadConfig() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - continue with env vars only.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// ConfigFileUsed returns the path to the configuration file that was loaded.
// Returns an empty string if no config file was found (env vars only mode).
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
