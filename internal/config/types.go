// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"envoy-cli/internal/environment"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultGracePeriodSeconds is how long a timed-out process gets to shut
	// down before it is killed.
	DefaultGracePeriodSeconds = 5
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidBundleRoot is returned when a bundle root entry is whitespace-only.
	ErrInvalidBundleRoot = errors.New("invalid bundle root")
	// ErrInvalidAllowlistEntry is returned when an allowlist entry is not a valid variable name.
	ErrInvalidAllowlistEntry = errors.New("invalid allowlist entry")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Mode selects how child environments are seeded: "closed" starts
		// from a minimal core set, "inherited" starts from the full parent
		// environment.
		Mode environment.Mode `json:"mode" mapstructure:"mode"`
		// Allowlist names parent variables that pass through in closed mode.
		Allowlist []string `json:"allowlist" mapstructure:"allowlist"`
		// BundleRoots lists directories scanned for bundles. When empty the
		// user's home directory is scanned.
		BundleRoots []string `json:"bundle_roots" mapstructure:"bundle_roots"`
		// GracePeriodSeconds is the delay between a graceful termination
		// request and a forced kill.
		GracePeriodSeconds int `json:"grace_period_seconds" mapstructure:"grace_period_seconds"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Mode:               environment.ModeClosed,
		GracePeriodSeconds: DefaultGracePeriodSeconds,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// GracePeriod returns the configured grace period as a duration.
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodSeconds) * time.Second
}

// IsValid returns whether the ColorScheme is one of the known values.
func (s ColorScheme) IsValid() (bool, []error) {
	switch s {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: s}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (must be %q, %q or %q)",
		string(e.Value), ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap exposes ErrInvalidUIConfig and the individual field errors so that
// errors.Is matches both the aggregate sentinel and the per-field ones.
func (e *InvalidUIConfigError) Unwrap() []error {
	return append([]error{ErrInvalidUIConfig}, e.FieldErrors...)
}

// IsValid returns whether the Config has valid fields. It delegates to
// Mode.IsValid() and UI.IsValid() and checks allowlist entries, bundle
// roots and the grace period locally.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Mode.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for i, name := range c.Allowlist {
		if !isVarName(name) {
			errs = append(errs, fmt.Errorf("%w: allowlist[%d]: %q is not a valid variable name", ErrInvalidAllowlistEntry, i, name))
		}
	}
	for i, root := range c.BundleRoots {
		if strings.TrimSpace(root) == "" {
			errs = append(errs, fmt.Errorf("%w: bundle_roots[%d] is empty", ErrInvalidBundleRoot, i))
		}
	}
	if c.GracePeriodSeconds < 0 {
		errs = append(errs, fmt.Errorf("%w: grace_period_seconds must not be negative", ErrInvalidConfig))
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap exposes ErrInvalidConfig and the individual field errors so that
// errors.Is matches both the aggregate sentinel and the per-field ones.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// isVarName reports whether s is a plausible environment variable name:
// non-empty, no '=', no whitespace.
func isVarName(s string) bool {
	if s == "" {
		return false
	}
	return !strings.ContainsAny(s, "= \t\n")
}
