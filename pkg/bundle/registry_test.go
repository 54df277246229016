// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sampleRegistry = `{
	"build": {
		"alias": ["make", "-j4"],
		"environment": ["build.json"],
		"description": "Build the project"
	},
	"serve": {
		"environment": ["app.json", "db.json"]
	},
	"fmt": {}
}`

func loadedRegistry(t *testing.T, files map[string]string) (*Registry, *Info) {
	t.Helper()
	root := writeBundle(t, files)
	info, err := NewInfo(root)
	if err != nil {
		t.Fatal(err)
	}
	reg := NewRegistry()
	if err := reg.LoadBundle(info); err != nil {
		t.Fatalf("LoadBundle() error = %v", err)
	}
	return reg, info
}

func TestRegistry_LoadBundle(t *testing.T) {
	t.Parallel()

	reg, info := loadedRegistry(t, map[string]string{
		RegistryFileName: sampleRegistry,
	})

	if reg.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", reg.Len())
	}
	if got := reg.Names(); !reflect.DeepEqual(got, []string{"build", "fmt", "serve"}) {
		t.Errorf("Names() = %v, want sorted [build fmt serve]", got)
	}

	build, ok := reg.Get("build")
	if !ok {
		t.Fatal("Get(build) not found")
	}
	if build.Name != "build" {
		t.Errorf("Name = %q, want build", build.Name)
	}
	if build.Bundle != info.Name {
		t.Errorf("Bundle = %q, want %q", build.Bundle, info.Name)
	}
	if build.EnvDir != info.EnvDir {
		t.Errorf("EnvDir = %q, want %q", build.EnvDir, info.EnvDir)
	}
}

func TestCommandSpec_Executable(t *testing.T) {
	t.Parallel()

	reg, _ := loadedRegistry(t, map[string]string{RegistryFileName: sampleRegistry})

	tests := []struct {
		command  string
		wantExe  string
		wantArgs []string
	}{
		{command: "build", wantExe: "make", wantArgs: []string{"-j4"}},
		{command: "serve", wantExe: "serve", wantArgs: nil},
		{command: "fmt", wantExe: "fmt", wantArgs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			t.Parallel()
			spec, ok := reg.Get(tt.command)
			if !ok {
				t.Fatalf("Get(%q) not found", tt.command)
			}
			if got := spec.Executable(); got != tt.wantExe {
				t.Errorf("Executable() = %q, want %q", got, tt.wantExe)
			}
			if got := spec.BaseArgs(); !reflect.DeepEqual(got, tt.wantArgs) {
				t.Errorf("BaseArgs() = %v, want %v", got, tt.wantArgs)
			}
		})
	}
}

func TestCommandSpec_EnvFilePaths(t *testing.T) {
	t.Parallel()

	t.Run("without global env", func(t *testing.T) {
		t.Parallel()
		reg, info := loadedRegistry(t, map[string]string{
			RegistryFileName: sampleRegistry,
			"app.json":       `{}`,
			"db.json":        `{}`,
		})
		spec, _ := reg.Get("serve")

		want := []string{
			filepath.Join(info.EnvDir, "app.json"),
			filepath.Join(info.EnvDir, "db.json"),
		}
		if got := spec.EnvFilePaths(); !reflect.DeepEqual(got, want) {
			t.Errorf("EnvFilePaths() = %v, want %v", got, want)
		}
	})

	t.Run("global env comes first", func(t *testing.T) {
		t.Parallel()
		reg, info := loadedRegistry(t, map[string]string{
			RegistryFileName:  sampleRegistry,
			GlobalEnvFileName: `{}`,
			"app.json":        `{}`,
			"db.json":         `{}`,
		})
		spec, _ := reg.Get("serve")

		want := []string{
			filepath.Join(info.EnvDir, GlobalEnvFileName),
			filepath.Join(info.EnvDir, "app.json"),
			filepath.Join(info.EnvDir, "db.json"),
		}
		if got := spec.EnvFilePaths(); !reflect.DeepEqual(got, want) {
			t.Errorf("EnvFilePaths() = %v, want %v", got, want)
		}
	})

	t.Run("missing files are returned for the resolver to report", func(t *testing.T) {
		t.Parallel()
		reg, info := loadedRegistry(t, map[string]string{RegistryFileName: sampleRegistry})
		spec, _ := reg.Get("build")

		want := []string{filepath.Join(info.EnvDir, "build.json")}
		if got := spec.EnvFilePaths(); !reflect.DeepEqual(got, want) {
			t.Errorf("EnvFilePaths() = %v, want %v", got, want)
		}
	})
}

func TestRegistry_LoadFile_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: `nope`},
		{name: "top-level array", content: `["a"]`},
		{name: "blank command name", content: `{"  ": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), RegistryFileName)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			err := NewRegistry().LoadFile(path)
			if err == nil {
				t.Fatal("LoadFile() expected error")
			}
			if !errors.Is(err, ErrInvalidRegistry) {
				t.Errorf("error %v does not wrap ErrInvalidRegistry", err)
			}
		})
	}
}

func TestRegistry_FirstRegistrationWins(t *testing.T) {
	t.Parallel()

	dirA := t.TempDir()
	dirB := t.TempDir()
	pathA := filepath.Join(dirA, RegistryFileName)
	pathB := filepath.Join(dirB, RegistryFileName)
	if err := os.WriteFile(pathA, []byte(`{"tool": {"description": "first"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pathB, []byte(`{"tool": {"description": "second"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := NewRegistry()
	if err := reg.LoadFile(pathA); err != nil {
		t.Fatal(err)
	}
	if err := reg.LoadFile(pathB); err != nil {
		t.Fatal(err)
	}

	spec, _ := reg.Get("tool")
	if spec.Description != "first" {
		t.Errorf("Description = %q, want the first registration to win", spec.Description)
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}
}

func TestFindRegistryFile(t *testing.T) {
	t.Parallel()

	root := writeBundle(t, map[string]string{RegistryFileName: `{}`})
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(root, EnvDirName, RegistryFileName)
	if got := FindRegistryFile(nested); got != want {
		t.Errorf("FindRegistryFile(%q) = %q, want %q", nested, got, want)
	}
	if got := FindRegistryFile(t.TempDir()); got != "" {
		t.Errorf("FindRegistryFile outside a bundle = %q, want empty", got)
	}
}
