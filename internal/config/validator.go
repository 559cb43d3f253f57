package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators registers bufwire-specific validation rules.
// Must be called before validating Config.
func RegisterCustomValidators(v *validator.Validate) error {
	// schemeless_host: a host with no URL scheme ("rpc.example.com:9090")
	if err := v.RegisterValidation("schemeless_host", validateSchemelessHost); err != nil {
		return fmt.Errorf("failed to register schemeless_host validator: %w", err)
	}
	// header_name: a valid HTTP header field name (RFC 9110 token)
	if err := v.RegisterValidation("header_name", validateHeaderName); err != nil {
		return fmt.Errorf("failed to register header_name validator: %w", err)
	}
	// duration: a Go duration string ("30s", "1m30s")
	if err := v.RegisterValidation("duration", validateDuration); err != nil {
		return fmt.Errorf("failed to register duration validator: %w", err)
	}
	return nil
}

// validateSchemelessHost rejects hosts that carry a URL scheme.
// The transport concatenates "http://" + host + path literally, so a scheme
// in the host would produce a malformed URL.
func validateSchemelessHost(fl validator.FieldLevel) bool {
	host := fl.Field().String()
	return host != "" && !strings.Contains(host, "://") && !strings.ContainsAny(host, " /")
}

// validateHeaderName accepts RFC 9110 token characters only.
func validateHeaderName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" {
		return false
	}
	for _, r := range name {
		if !isTokenRune(r) {
			return false
		}
	}
	return true
}

func isTokenRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("!#$%&'*+-.^_`|~", r)
}

// validateDuration accepts time.ParseDuration syntax.
func validateDuration(fl validator.FieldLevel) bool {
	_, err := time.ParseDuration(fl.Field().String())
	return err == nil
}

// Validate validates the Config using struct tags and custom rules.
// Returns an error with actionable messages if validation fails.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := RegisterCustomValidators(v); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	return nil
}

// formatValidationErrors converts validator.ValidationErrors to user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for a single validation error.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "startswith":
		return fmt.Sprintf("%s must start with %q", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "hostname_port":
		return fmt.Sprintf("%s must be a valid host:port", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "schemeless_host":
		return fmt.Sprintf("%s must be a host without a scheme (e.g. \"rpc.example.com:9090\")", field)
	case "header_name":
		return fmt.Sprintf("%s must be a valid HTTP header name", field)
	case "duration":
		return fmt.Sprintf("%s must be a duration such as \"30s\"", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}
