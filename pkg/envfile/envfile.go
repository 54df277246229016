// SPDX-License-Identifier: MPL-2.0

// Package envfile defines the wire format for envoy environment files: JSON
// objects whose keys carry an optional merge-operator prefix and whose values
// are either a single string or an ordered list of strings. Parsing preserves
// the declaration order of keys, which the resolver depends on.
package envfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	// AppendPrefix marks a key whose value is appended to the current value.
	AppendPrefix = "+="
	// PrependPrefix marks a key whose value is prepended to the current value.
	PrependPrefix = "^="
)

const (
	// OpAssign replaces the variable outright.
	OpAssign Operator = "assign"
	// OpAppend concatenates the existing value, the path list separator
	// (when the existing value is non-empty), and the new value.
	OpAppend Operator = "append"
	// OpPrepend is symmetric to OpAppend with the new value placed first.
	OpPrepend Operator = "prepend"
)

var (
	// ErrInvalidOperator is the sentinel error wrapped by InvalidOperatorError.
	ErrInvalidOperator = errors.New("invalid operator")
	// ErrMalformedFile is the sentinel error wrapped by MalformedFileError.
	ErrMalformedFile = errors.New("malformed environment file")
)

type (
	// Operator tags how an assignment combines with any existing value for
	// the same variable name.
	Operator string

	// InvalidOperatorError is returned when an Operator value is not one of
	// the defined variants. It wraps ErrInvalidOperator for errors.Is().
	InvalidOperatorError struct {
		Value Operator
	}

	// Assignment is one parsed key/value pair from an environment file:
	// the canonical variable name, the merge operator, and the raw value(s)
	// before interpolation. List values keep their declared element order.
	Assignment struct {
		Name   string
		Op     Operator
		Values []string
		// List records whether the raw JSON value was a list. The resolver
		// joins list elements with the OS path list separator.
		List bool
	}

	// File is an ordered sequence of assignments tagged with its source path.
	// The path feeds special-variable computation and diagnostics.
	File struct {
		Path        string
		Assignments []Assignment
	}

	// MalformedFileError is returned when an environment file cannot be read
	// or is not a JSON object of supported values. It wraps ErrMalformedFile.
	MalformedFileError struct {
		Path string
		Err  error
	}
)

// IsValid returns whether the Operator is one of the defined variants,
// and a list of validation errors if it is not.
func (o Operator) IsValid() (bool, []error) {
	switch o {
	case OpAssign, OpAppend, OpPrepend:
		return true, nil
	}
	return false, []error{&InvalidOperatorError{Value: o}}
}

// String returns the operator tag.
func (o Operator) String() string { return string(o) }

// Error implements the error interface.
func (e *InvalidOperatorError) Error() string {
	return fmt.Sprintf("invalid operator %q (must be assign, append, or prepend)", string(e.Value))
}

// Unwrap returns ErrInvalidOperator so callers can use errors.Is.
func (e *InvalidOperatorError) Unwrap() error { return ErrInvalidOperator }

// Error implements the error interface.
func (e *MalformedFileError) Error() string {
	return fmt.Sprintf("malformed environment file %s: %v", e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause for errors.Is/As.
func (e *MalformedFileError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedFile}
	}
	return []error{ErrMalformedFile, e.Err}
}

// Key returns the raw key this assignment was parsed from, operator prefix
// included. Used in diagnostics.
func (a *Assignment) Key() string {
	switch a.Op {
	case OpAppend:
		return AppendPrefix + a.Name
	case OpPrepend:
		return PrependPrefix + a.Name
	default:
		return a.Name
	}
}

// ParseKey classifies a raw assignment key into a canonical variable name and
// a merge operator. A prefix that is not a recognized operator is treated as
// part of the literal variable name rather than rejected; this permissiveness
// is part of the format contract.
func ParseKey(raw string) (string, Operator) {
	switch {
	case strings.HasPrefix(raw, AppendPrefix):
		return strings.TrimPrefix(raw, AppendPrefix), OpAppend
	case strings.HasPrefix(raw, PrependPrefix):
		return strings.TrimPrefix(raw, PrependPrefix), OpPrepend
	default:
		return raw, OpAssign
	}
}

// Load reads and parses the environment file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &MalformedFileError{Path: path, Err: err}
	}
	return Parse(data, path)
}

// Parse parses JSON environment file content. The token-level decoder keeps
// assignments in their declared key order; encoding/json maps would not.
func Parse(data []byte, path string) (*File, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, &MalformedFileError{Path: path, Err: err}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &MalformedFileError{Path: path, Err: errors.New("top-level value must be a JSON object")}
	}

	f := &File{Path: path}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, &MalformedFileError{Path: path, Err: err}
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, &MalformedFileError{Path: path, Err: fmt.Errorf("unexpected key token %v", keyTok)}
		}

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, &MalformedFileError{Path: path, Err: fmt.Errorf("key %q: %w", key, err)}
		}
		values, isList, err := coerceValue(raw)
		if err != nil {
			return nil, &MalformedFileError{Path: path, Err: fmt.Errorf("key %q: %w", key, err)}
		}

		name, op := ParseKey(key)
		f.Assignments = append(f.Assignments, Assignment{
			Name:   name,
			Op:     op,
			Values: values,
			List:   isList,
		})
	}
	if _, err := dec.Token(); err != nil {
		return nil, &MalformedFileError{Path: path, Err: err}
	}

	return f, nil
}

// coerceValue normalizes a decoded JSON value into an ordered string slice.
func coerceValue(raw any) ([]string, bool, error) {
	switch v := raw.(type) {
	case string:
		return []string{v}, false, nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, err := coerceScalar(item)
			if err != nil {
				return nil, false, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, s)
		}
		return out, true, nil
	default:
		s, err := coerceScalar(raw)
		if err != nil {
			return nil, false, err
		}
		return []string{s}, false, nil
	}
}

// coerceScalar stringifies a scalar JSON value. Objects are rejected; null
// becomes the empty string.
func coerceScalar(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unsupported value type %T (expected string, number, bool, null, or a list of them)", raw)
	}
}
