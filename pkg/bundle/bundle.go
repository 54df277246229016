// SPDX-License-Identifier: MPL-2.0

// Package bundle describes envoy bundles and their command registries.
//
// A bundle is a directory (typically a git repository root) that carries an
// "envoy_env" subdirectory holding JSON environment files and, optionally, a
// commands.json registry. The bundle root doubles as the anchor for the
// special interpolation variables computed per environment file.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// EnvDirName is the subdirectory that marks a directory as a bundle.
	EnvDirName = "envoy_env"
	// RegistryFileName is the command registry file inside envoy_env.
	RegistryFileName = "commands.json"
	// GlobalEnvFileName is loaded before any command-specific environment
	// file when present in a bundle.
	GlobalEnvFileName = "global_env.json"
)

// Info is a discovered bundle. EnvFiles is indexed once at construction so
// command execution never rescans the directory.
type Info struct {
	// Root is the absolute bundle root directory.
	Root string
	// Name is the bundle's directory name.
	Name string
	// EnvDir is the absolute path of the envoy_env directory.
	EnvDir string
	// EnvFiles maps JSON file names inside EnvDir to their absolute paths.
	EnvFiles map[string]string
}

// NewInfo builds bundle metadata for the given root directory and indexes
// its environment files.
func NewInfo(root string) (*Info, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve bundle root %q: %w", root, err)
	}

	info := &Info{
		Root:   abs,
		Name:   filepath.Base(abs),
		EnvDir: filepath.Join(abs, EnvDirName),
	}
	info.EnvFiles = indexEnvFiles(info.EnvDir)
	return info, nil
}

// IsBundle reports whether path is a directory containing an envoy_env
// subdirectory.
func IsBundle(path string) bool {
	st, err := os.Stat(filepath.Join(path, EnvDirName))
	return err == nil && st.IsDir()
}

// EnvFile returns the absolute path of a named environment file in this
// bundle, if present.
func (b *Info) EnvFile(name string) (string, bool) {
	p, ok := b.EnvFiles[name]
	return p, ok
}

// HasRegistry reports whether the bundle carries a commands.json registry.
func (b *Info) HasRegistry() bool {
	_, ok := b.EnvFiles[RegistryFileName]
	return ok
}

func (b *Info) String() string {
	return fmt.Sprintf("%s (%s)", b.Name, b.Root)
}

// indexEnvFiles scans dir once and maps every *.json file name to its
// absolute path. A missing or unreadable directory yields an empty index.
func indexEnvFiles(dir string) map[string]string {
	index := make(map[string]string)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return index
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		index[entry.Name()] = filepath.Join(dir, entry.Name())
	}
	return index
}
