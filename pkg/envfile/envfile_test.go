// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		wantName string
		wantOp   Operator
	}{
		{
			name:     "plain name assigns",
			raw:      "PATH",
			wantName: "PATH",
			wantOp:   OpAssign,
		},
		{
			name:     "append prefix",
			raw:      "+=PATH",
			wantName: "PATH",
			wantOp:   OpAppend,
		},
		{
			name:     "prepend prefix",
			raw:      "^=PATH",
			wantName: "PATH",
			wantOp:   OpPrepend,
		},
		{
			name:     "unrecognized prefix stays part of the name",
			raw:      "~=PATH",
			wantName: "~=PATH",
			wantOp:   OpAssign,
		},
		{
			name:     "bare operator yields empty name",
			raw:      "+=",
			wantName: "",
			wantOp:   OpAppend,
		},
		{
			name:     "operator in the middle is literal",
			raw:      "MY+=VAR",
			wantName: "MY+=VAR",
			wantOp:   OpAssign,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gotName, gotOp := ParseKey(tt.raw)
			if gotName != tt.wantName || gotOp != tt.wantOp {
				t.Errorf("ParseKey(%q) = (%q, %q), want (%q, %q)",
					tt.raw, gotName, gotOp, tt.wantName, tt.wantOp)
			}
		})
	}
}

func TestOperator_IsValid(t *testing.T) {
	t.Parallel()

	for _, op := range []Operator{OpAssign, OpAppend, OpPrepend} {
		if valid, errs := op.IsValid(); !valid || len(errs) != 0 {
			t.Errorf("IsValid(%q) = (%v, %v), want (true, nil)", op, valid, errs)
		}
	}

	valid, errs := Operator("replace").IsValid()
	if valid || len(errs) != 1 {
		t.Fatalf("IsValid(replace) = (%v, %v), want one error", valid, errs)
	}
	if !errors.Is(errs[0], ErrInvalidOperator) {
		t.Errorf("error %v does not wrap ErrInvalidOperator", errs[0])
	}
}

func TestParse_PreservesDeclarationOrder(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"ZEBRA": "z",
		"ALPHA": "a",
		"+=ALPHA": "b",
		"MIKE": "m"
	}`)

	f, err := Parse(data, "test.json")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	wantKeys := []string{"ZEBRA", "ALPHA", "+=ALPHA", "MIKE"}
	if len(f.Assignments) != len(wantKeys) {
		t.Fatalf("got %d assignments, want %d", len(f.Assignments), len(wantKeys))
	}
	for i, want := range wantKeys {
		if got := f.Assignments[i].Key(); got != want {
			t.Errorf("assignment %d key = %q, want %q", i, got, want)
		}
	}
}

func TestParse_Values(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		data       string
		wantValues []string
		wantList   bool
	}{
		{
			name:       "string value",
			data:       `{"V": "hello"}`,
			wantValues: []string{"hello"},
		},
		{
			name:       "list value keeps element order",
			data:       `{"V": ["/a/bin", "/b/bin", "/c/bin"]}`,
			wantValues: []string{"/a/bin", "/b/bin", "/c/bin"},
			wantList:   true,
		},
		{
			name:       "integer is stringified without float mangling",
			data:       `{"V": 8080}`,
			wantValues: []string{"8080"},
		},
		{
			name:       "bool is stringified",
			data:       `{"V": true}`,
			wantValues: []string{"true"},
		},
		{
			name:       "null becomes empty string",
			data:       `{"V": null}`,
			wantValues: []string{""},
		},
		{
			name:       "mixed list",
			data:       `{"V": ["a", 1, false]}`,
			wantValues: []string{"a", "1", "false"},
			wantList:   true,
		},
		{
			name:       "empty list",
			data:       `{"V": []}`,
			wantValues: []string{},
			wantList:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, err := Parse([]byte(tt.data), "test.json")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(f.Assignments) != 1 {
				t.Fatalf("got %d assignments, want 1", len(f.Assignments))
			}
			a := f.Assignments[0]
			if !reflect.DeepEqual(a.Values, tt.wantValues) {
				t.Errorf("Values = %v, want %v", a.Values, tt.wantValues)
			}
			if a.List != tt.wantList {
				t.Errorf("List = %v, want %v", a.List, tt.wantList)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{name: "top-level array", data: `["A", "B"]`},
		{name: "top-level string", data: `"A"`},
		{name: "nested object value", data: `{"V": {"nested": true}}`},
		{name: "object inside list", data: `{"V": [{"nested": true}]}`},
		{name: "truncated", data: `{"V": "a"`},
		{name: "empty input", data: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.data), "bad.json")
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !errors.Is(err, ErrMalformedFile) {
				t.Errorf("error %v does not wrap ErrMalformedFile", err)
			}
			var mfe *MalformedFileError
			if !errors.As(err, &mfe) {
				t.Fatalf("error %v is not a MalformedFileError", err)
			}
			if mfe.Path != "bad.json" {
				t.Errorf("Path = %q, want %q", mfe.Path, "bad.json")
			}
		})
	}
}

func TestParse_EmptyObject(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(`{}`), "empty.json")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(f.Assignments) != 0 {
		t.Errorf("got %d assignments, want 0", len(f.Assignments))
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "env.json")
	if err := os.WriteFile(path, []byte(`{"APP": "envoy", "+=PATH": "/opt/bin"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if f.Path != path {
		t.Errorf("Path = %q, want %q", f.Path, path)
	}
	if len(f.Assignments) != 2 {
		t.Fatalf("got %d assignments, want 2", len(f.Assignments))
	}
	if f.Assignments[1].Op != OpAppend || f.Assignments[1].Name != "PATH" {
		t.Errorf("second assignment = %+v, want append to PATH", f.Assignments[1])
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, ErrMalformedFile) {
		t.Errorf("error %v does not wrap ErrMalformedFile", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error %v does not wrap os.ErrNotExist", err)
	}
}
