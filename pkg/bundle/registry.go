// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrInvalidRegistry is the sentinel error wrapped by RegistryError.
var ErrInvalidRegistry = errors.New("invalid command registry")

type (
	// CommandSpec describes one registered command: the public command name,
	// an optional alias (executable plus prepended arguments; absent means
	// the command name is the executable), and the ordered list of
	// environment file names to load from the bundle's envoy_env directory.
	CommandSpec struct {
		// Name is the registry key the user invokes.
		Name string `json:"-"`
		// Alias is the executable followed by prepended arguments.
		Alias []string `json:"alias,omitempty"`
		// Environment lists environment file names in load order.
		Environment []string `json:"environment,omitempty"`
		// Description is free-form help text.
		Description string `json:"description,omitempty"`
		// Bundle is the owning bundle's name, stamped during load.
		Bundle string `json:"-"`
		// EnvDir is the owning envoy_env directory, stamped during load.
		EnvDir string `json:"-"`
	}

	// Registry is the command name to CommandSpec mapping aggregated from
	// one or more bundles. On a name collision the first registration wins.
	Registry struct {
		commands map[string]*CommandSpec
	}

	// RegistryError is returned when a commands.json file cannot be read or
	// decoded. It wraps ErrInvalidRegistry for errors.Is().
	RegistryError struct {
		Path string
		Err  error
	}
)

// Error implements the error interface.
func (e *RegistryError) Error() string {
	return fmt.Sprintf("invalid command registry %s: %v", e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *RegistryError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidRegistry}
	}
	return []error{ErrInvalidRegistry, e.Err}
}

// Executable returns the program to launch for this command: the first alias
// element when an alias is set, otherwise the command name itself.
func (c *CommandSpec) Executable() string {
	if len(c.Alias) > 0 {
		return c.Alias[0]
	}
	return c.Name
}

// BaseArgs returns the alias arguments that precede any user-supplied ones.
func (c *CommandSpec) BaseArgs() []string {
	if len(c.Alias) > 1 {
		out := make([]string, len(c.Alias)-1)
		copy(out, c.Alias[1:])
		return out
	}
	return nil
}

// EnvFilePaths returns the ordered environment file list for this command:
// the bundle's global_env.json first when it exists, then the command's own
// files in declaration order. Paths are absolute; missing command files are
// returned as-is so the resolver can report them.
func (c *CommandSpec) EnvFilePaths() []string {
	var out []string
	global := filepath.Join(c.EnvDir, GlobalEnvFileName)
	if st, err := os.Stat(global); err == nil && !st.IsDir() {
		out = append(out, global)
	}
	for _, name := range c.Environment {
		out = append(out, filepath.Join(c.EnvDir, name))
	}
	return out
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*CommandSpec)}
}

// LoadBundle loads the bundle's commands.json into the registry. Bundles
// without a registry contribute environment files only; that is not an error.
func (r *Registry) LoadBundle(b *Info) error {
	path, ok := b.EnvFiles[RegistryFileName]
	if !ok {
		return nil
	}
	return r.LoadFile(path)
}

// LoadFile loads a commands.json registry file. The file is a JSON object
// mapping command names to their specs. Commands already present keep their
// earlier registration; the collision is logged.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &RegistryError{Path: path, Err: err}
	}

	var raw map[string]CommandSpec
	if err := json.Unmarshal(data, &raw); err != nil {
		return &RegistryError{Path: path, Err: err}
	}

	envDir := filepath.Dir(path)
	bundleName := filepath.Base(filepath.Dir(envDir))

	for name, spec := range raw {
		if strings.TrimSpace(name) == "" {
			return &RegistryError{Path: path, Err: errors.New("empty command name")}
		}
		if _, exists := r.commands[name]; exists {
			slog.Warn("duplicate command name, keeping first registration",
				"command", name, "bundle", bundleName)
			continue
		}
		s := spec
		s.Name = name
		s.Bundle = bundleName
		s.EnvDir = envDir
		r.commands[name] = &s
	}

	slog.Debug("loaded command registry", "file", path, "commands", len(raw))
	return nil
}

// Get returns the spec registered under name.
func (r *Registry) Get(name string) (*CommandSpec, bool) {
	c, ok := r.commands[name]
	return c, ok
}

// Names returns all registered command names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered commands.
func (r *Registry) Len() int { return len(r.commands) }

// FindRegistryFile walks up from dir looking for envoy_env/commands.json.
// It returns the first match, or "" when no ancestor carries one.
func FindRegistryFile(dir string) string {
	cur, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(cur, EnvDirName, RegistryFileName)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return ""
		}
		cur = parent
	}
}
