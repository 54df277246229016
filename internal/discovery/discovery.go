// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"envoy-cli/internal/config"
	"envoy-cli/pkg/bundle"
)

// DefaultMaxDepth bounds how deep bundle roots are scanned. Bundles live at
// or near the top of project trees; deep scans only find noise.
const DefaultMaxDepth = 5

// ErrCommandNotFound is returned when no discovered bundle registers the
// requested command.
var ErrCommandNotFound = errors.New("command not found")

// Source represents where a bundle was found.
type Source int

const (
	// SourceCurrentDir indicates the bundle encloses the working directory.
	SourceCurrentDir Source = iota
	// SourceBundleRoot indicates the bundle was found under a configured root.
	SourceBundleRoot
	// SourceHomeDir indicates the bundle was found under the home directory fallback.
	SourceHomeDir
)

// String returns a human-readable source name.
func (s Source) String() string {
	switch s {
	case SourceCurrentDir:
		return "current directory"
	case SourceBundleRoot:
		return "configured bundle root"
	case SourceHomeDir:
		return "home directory"
	default:
		return "unknown"
	}
}

// DiscoveredBundle is a bundle found during a scan, with its command
// registry loaded (when one exists).
type DiscoveredBundle struct {
	// Bundle describes the bundle directory and its env files.
	Bundle *bundle.Info
	// Source indicates where the bundle was found.
	Source Source
	// Registry holds the bundle's commands (nil when commands.json is absent).
	Registry *bundle.Registry
	// Err records a registry load failure; the bundle is still listed so
	// its env files stay usable.
	Err error
}

// CommandNotFoundError is returned when a command name matches nothing.
// It wraps ErrCommandNotFound for errors.Is() compatibility.
type CommandNotFoundError struct {
	Name      string
	Available []string
}

// Error implements the error interface.
func (e *CommandNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return "command not found: " + e.Name + " (no bundles registered any commands)"
	}
	return "command not found: " + e.Name
}

// Unwrap returns ErrCommandNotFound for errors.Is() compatibility.
func (e *CommandNotFoundError) Unwrap() error { return ErrCommandNotFound }

// Discovery finds bundles according to the loaded configuration.
type Discovery struct {
	cfg *config.Config
}

// New creates a new Discovery instance.
func New(cfg *config.Config) *Discovery {
	return &Discovery{cfg: cfg}
}

// DiscoverAll finds all bundles from all sources in order of precedence:
// the bundle enclosing the current directory first, then each configured
// bundle root in order (or the home directory when none are configured).
func (d *Discovery) DiscoverAll() []*DiscoveredBundle {
	var found []*DiscoveredBundle
	seen := make(map[string]bool)

	add := func(root string, source Source) {
		abs, err := filepath.Abs(root)
		if err != nil {
			return
		}
		if seen[abs] {
			return
		}
		seen[abs] = true
		found = append(found, d.loadBundle(abs, source))
	}

	// 1. Bundle enclosing the working directory (highest precedence).
	if cwd, err := os.Getwd(); err == nil {
		if enclosing := findEnclosingBundle(cwd); enclosing != "" {
			add(enclosing, SourceCurrentDir)
		}
	}

	// 2. Configured bundle roots, falling back to the home directory.
	roots := d.cfg.BundleRoots
	source := SourceBundleRoot
	if len(roots) == 0 {
		if home, err := os.UserHomeDir(); err == nil {
			roots = []string{home}
			source = SourceHomeDir
		}
	}
	for _, root := range roots {
		for _, dir := range scanRoot(root, DefaultMaxDepth) {
			add(dir, source)
		}
	}

	return found
}

// Commands aggregates the registries of all discovered bundles into a single
// name -> command view. Cross-bundle collisions resolve to the first bundle
// in discovery order; later definitions are logged and skipped, mirroring
// the within-registry rule.
func (d *Discovery) Commands() map[string]*bundle.CommandSpec {
	commands := make(map[string]*bundle.CommandSpec)
	for _, db := range d.DiscoverAll() {
		if db.Registry == nil {
			continue
		}
		for _, name := range db.Registry.Names() {
			spec, _ := db.Registry.Get(name)
			if prior, exists := commands[name]; exists {
				slog.Warn("command name collision between bundles, keeping first",
					"command", name,
					"kept", prior.Bundle,
					"skipped", spec.Bundle)
				continue
			}
			commands[name] = spec
		}
	}
	return commands
}

// FindCommand locates a command by name across all discovered bundles.
func (d *Discovery) FindCommand(name string) (*bundle.CommandSpec, error) {
	commands := d.Commands()
	if spec, ok := commands[name]; ok {
		return spec, nil
	}

	available := make([]string, 0, len(commands))
	for cmdName := range commands {
		available = append(available, cmdName)
	}
	sort.Strings(available)
	return nil, &CommandNotFoundError{Name: name, Available: available}
}

// loadBundle builds bundle info and loads its registry, tolerating bundles
// that carry only env files.
func (d *Discovery) loadBundle(dir string, source Source) *DiscoveredBundle {
	db := &DiscoveredBundle{Source: source}

	info, err := bundle.NewInfo(dir)
	if err != nil {
		slog.Warn("failed to index bundle", "bundle", dir, "error", err)
		db.Err = err
		return db
	}
	db.Bundle = info
	if !db.Bundle.HasRegistry() {
		return db
	}

	reg := bundle.NewRegistry()
	if err := reg.LoadBundle(db.Bundle); err != nil {
		slog.Warn("failed to load command registry", "bundle", dir, "error", err)
		db.Err = err
		return db
	}
	db.Registry = reg
	return db
}

// findEnclosingBundle walks up from dir looking for an envoy_env/ directory.
func findEnclosingBundle(dir string) string {
	for {
		marker := filepath.Join(dir, bundle.EnvDirName)
		if info, err := os.Stat(marker); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// scanRoot finds bundle directories under root, descending at most maxDepth
// levels. A found bundle is a leaf: its subtree is not scanned further.
// Hidden directories are skipped except for the envoy_env marker check.
func scanRoot(root string, maxDepth int) []string {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		slog.Warn("bundle root does not exist, skipping", "root", root)
		return nil
	}

	var bundles []string
	type frame struct {
		dir   string
		depth int
	}
	queue := []frame{{dir: root, depth: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if bundle.IsBundle(cur.dir) {
			bundles = append(bundles, cur.dir)
			continue
		}
		if cur.depth >= maxDepth {
			continue
		}

		entries, err := os.ReadDir(cur.dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			name := entry.Name()
			if name[0] == '.' || name == "node_modules" || name == "vendor" {
				continue
			}
			queue = append(queue, frame{dir: filepath.Join(cur.dir, name), depth: cur.depth + 1})
		}
	}

	sort.Strings(bundles)
	return bundles
}
