// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"maps"
	"os"
	"slices"
	"strings"
)

// Resolved is the final immutable variable mapping handed to the child
// process at spawn time, tagged with the mode it was built under. The
// backing map is copied on construction and never mutated afterwards, so a
// Resolved is safe to share across concurrent readers without
// synchronization.
type Resolved struct {
	mode Mode
	vars map[string]string
}

func newResolved(mode Mode, vars map[string]string) *Resolved {
	return &Resolved{mode: mode, vars: maps.Clone(vars)}
}

// Mode returns the mode the mapping was resolved under.
func (r *Resolved) Mode() Mode { return r.mode }

// Get returns the value for name and whether it is defined.
func (r *Resolved) Get(name string) (string, bool) {
	v, ok := r.vars[name]
	return v, ok
}

// Value returns the value for name, or "" when undefined.
func (r *Resolved) Value(name string) string { return r.vars[name] }

// Len returns the number of resolved variables.
func (r *Resolved) Len() int { return len(r.vars) }

// Names returns all variable names in sorted order.
func (r *Resolved) Names() []string {
	return slices.Sorted(maps.Keys(r.vars))
}

// PathList splits the named variable on the OS path list separator.
// Empty or undefined values yield nil.
func (r *Resolved) PathList(name string) []string {
	v := r.vars[name]
	if v == "" {
		return nil
	}
	return strings.Split(v, string(os.PathListSeparator))
}

// Environ returns the mapping as "KEY=VALUE" strings sorted by name.
// Sorting makes the output byte-identical for identical inputs regardless
// of map iteration order.
func (r *Resolved) Environ() []string {
	out := make([]string, 0, len(r.vars))
	for _, name := range r.Names() {
		out = append(out, name+"="+r.vars[name])
	}
	return out
}
