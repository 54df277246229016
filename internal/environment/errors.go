// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig is the sentinel error wrapped by ConfigError.
	ErrConfig = errors.New("malformed environment definition")
	// ErrResolution is the sentinel error wrapped by ResolutionError.
	ErrResolution = errors.New("environment resolution failed")
)

type (
	// ConfigError reports malformed input to resolution: an unreadable or
	// invalid environment file, or an invalid resolver configuration.
	// Resolution is all-or-nothing, so no partial mapping accompanies it.
	ConfigError struct {
		// Path is the offending file, when the failure is file-scoped.
		Path string
		Err  error
	}

	// ResolutionError reports an operator application that cannot be
	// completed, such as an operator prefix with no variable name.
	ResolutionError struct {
		File   string
		Key    string
		Reason string
	}
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid environment definition %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid environment definition: %v", e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause for errors.Is/As.
func (e *ConfigError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfig}
	}
	return []error{ErrConfig, e.Err}
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot apply %q in %s: %s", e.Key, e.File, e.Reason)
}

// Unwrap returns ErrResolution so callers can use errors.Is.
func (e *ResolutionError) Unwrap() error { return ErrResolution }
