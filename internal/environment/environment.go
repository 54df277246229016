// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"envoy-cli/pkg/envfile"
)

const (
	// ModeClosed seeds the child environment from a fixed core variable set
	// plus the caller's allowlist; nothing else leaks from the host.
	ModeClosed Mode = "closed"
	// ModeInherited seeds the child environment from the full host
	// environment, with file assignments layered on top.
	ModeInherited Mode = "inherited"
)

// ErrInvalidMode is the sentinel error wrapped by InvalidModeError.
var ErrInvalidMode = errors.New("invalid environment mode")

type (
	// Mode selects the base seeding strategy for resolution.
	Mode string

	// InvalidModeError is returned when a Mode value is not recognized.
	// It wraps ErrInvalidMode for errors.Is() compatibility.
	InvalidModeError struct {
		Value Mode
	}

	// Resolver folds an ordered list of environment files into one immutable
	// variable mapping. All configuration is explicit; nothing is read from
	// ambient process-wide state except through the Environ hook.
	Resolver struct {
		// Mode selects closed or inherited seeding.
		Mode Mode
		// Allowlist names additional host variables carried through in
		// closed mode, on top of the built-in core set.
		Allowlist []string
		// Environ returns the host environment as "KEY=VALUE" strings.
		// When nil, os.Environ() is used.
		Environ func() []string
	}
)

// Error implements the error interface.
func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid environment mode %q (must be %q or %q)", string(e.Value), ModeClosed, ModeInherited)
}

// Unwrap returns ErrInvalidMode so callers can use errors.Is.
func (e *InvalidModeError) Unwrap() error { return ErrInvalidMode }

// IsValid returns whether the Mode is a recognized variant, and a list of
// validation errors if it is not.
func (m Mode) IsValid() (bool, []error) {
	switch m {
	case ModeClosed, ModeInherited:
		return true, nil
	}
	return false, []error{&InvalidModeError{Value: m}}
}

// String returns the mode tag.
func (m Mode) String() string { return string(m) }

// NewResolver creates a Resolver for the given mode and allowlist, reading
// the host environment from os.Environ.
func NewResolver(mode Mode, allowlist []string) *Resolver {
	return &Resolver{Mode: mode, Allowlist: allowlist}
}

// ResolveFiles loads the named environment files and resolves them in order.
// Any read or parse failure aborts with a ConfigError; no partial mapping is
// returned.
func (r *Resolver) ResolveFiles(paths []string) (*Resolved, error) {
	files := make([]envfile.File, 0, len(paths))
	for _, p := range paths {
		f, err := envfile.Load(p)
		if err != nil {
			return nil, &ConfigError{Path: p, Err: err}
		}
		files = append(files, *f)
	}
	return r.Resolve(files)
}

// Resolve folds the given files, strictly in order, into a Resolved mapping.
//
// For each assignment the raw value is interpolated against the special
// variables of the assignment's file plus the mapping built so far, list
// values are joined with the OS path list separator, and the operator is
// applied. Identical inputs always produce an identical mapping: file order
// is respected exactly and seeding depends only on (mode, allowlist, host
// environment snapshot).
func (r *Resolver) Resolve(files []envfile.File) (*Resolved, error) {
	if ok, errs := r.Mode.IsValid(); !ok {
		return nil, &ConfigError{Err: errors.Join(errs...)}
	}

	merged := r.seed()
	sep := string(os.PathListSeparator)

	for _, f := range files {
		specials, err := SpecialVars(f.Path)
		if err != nil {
			return nil, &ConfigError{Path: f.Path, Err: err}
		}

		for _, a := range f.Assignments {
			if a.Name == "" {
				return nil, &ResolutionError{
					File:   f.Path,
					Key:    a.Key(),
					Reason: "operator prefix with no variable name",
				}
			}

			// Join before expanding, so a reference may span the joined
			// value exactly as the file declared it.
			value := Expand(strings.Join(a.Values, sep), merged, specials)

			switch a.Op {
			case envfile.OpAssign:
				merged[a.Name] = value
			case envfile.OpAppend:
				if cur := merged[a.Name]; cur != "" {
					merged[a.Name] = cur + sep + value
				} else {
					merged[a.Name] = value
				}
			case envfile.OpPrepend:
				if cur := merged[a.Name]; cur != "" {
					merged[a.Name] = value + sep + cur
				} else {
					merged[a.Name] = value
				}
			default:
				return nil, &ResolutionError{
					File:   f.Path,
					Key:    a.Key(),
					Reason: fmt.Sprintf("unknown operator %q", a.Op),
				}
			}
		}

		slog.Debug("loaded environment file", "file", f.Path, "assignments", len(f.Assignments))
	}

	return newResolved(r.Mode, merged), nil
}

// seed builds the starting mapping for resolution. In inherited mode this is
// the full host environment; in closed mode only the built-in core variables
// and the caller's allowlist survive.
func (r *Resolver) seed() map[string]string {
	environ := r.Environ
	if environ == nil {
		environ = os.Environ
	}

	merged := make(map[string]string)
	if r.Mode == ModeInherited {
		for _, entry := range environ() {
			if name, value, ok := splitEntry(entry); ok {
				merged[name] = value
			}
		}
		return merged
	}

	allow := make(map[string]struct{}, len(r.Allowlist))
	for _, name := range r.Allowlist {
		allow[name] = struct{}{}
	}

	for _, entry := range environ() {
		name, value, ok := splitEntry(entry)
		if !ok {
			continue
		}
		if _, core := coreVars[name]; core {
			merged[name] = value
			continue
		}
		if _, ok := allow[name]; ok {
			merged[name] = value
		}
	}
	return merged
}

// splitEntry splits one "KEY=VALUE" environ entry. Windows can produce
// entries with a leading '=', which are skipped along with separator-less
// entries.
func splitEntry(entry string) (string, string, bool) {
	idx := strings.IndexByte(entry, '=')
	if idx <= 0 {
		return "", "", false
	}
	return entry[:idx], entry[idx+1:], true
}

// coreVars are always carried through from the host in closed mode. They
// provide identity, paths, and OS services that most processes assume are
// present; they are never secret, and withholding them tends to break tools
// in surprising ways. The allowlist is additive on top of this set.
var coreVars = func() map[string]struct{} {
	names := []string{
		// User identity and home (Windows)
		"USERNAME", "USERPROFILE", "USERDOMAIN", "USERDOMAIN_ROAMINGPROFILE",
		"HOMEDRIVE", "HOMEPATH",
		// User data directories
		"APPDATA", "LOCALAPPDATA", "PUBLIC",
		// Temp
		"TEMP", "TMP", "TMPDIR",
		// System / Windows layout
		"SystemRoot", "SystemDrive", "windir",
		"ProgramFiles", "ProgramFiles(x86)", "ProgramW6432",
		"CommonProgramFiles", "CommonProgramFiles(x86)", "CommonProgramW6432",
		// Hardware / OS identity
		"COMPUTERNAME", "OS",
		"PROCESSOR_ARCHITECTURE", "PROCESSOR_IDENTIFIER",
		"PROCESSOR_LEVEL", "PROCESSOR_REVISION", "NUMBER_OF_PROCESSORS",
		// Shell / console
		"COMSPEC", "TERM", "TERM_PROGRAM", "COLORTERM",
		// Unix identity
		"HOME", "USER", "LOGNAME", "SHELL",
		// Locale / encoding
		"LANG", "LC_ALL", "LC_CTYPE", "LC_MESSAGES",
		// XDG base dirs
		"XDG_RUNTIME_DIR", "XDG_CONFIG_HOME", "XDG_DATA_HOME", "XDG_CACHE_HOME",
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}()

// IsCoreVar reports whether name is in the built-in closed-mode core set.
func IsCoreVar(name string) bool {
	_, ok := coreVars[name]
	return ok
}
