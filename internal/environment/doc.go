// SPDX-License-Identifier: MPL-2.0

// Package environment resolves layered envoy environment files into the
// immutable variable mapping a child process is launched with.
//
// Resolution folds an ordered list of files over a seeded base: in closed
// mode the base is a fixed core variable set plus an explicit allowlist, in
// inherited mode it is the full host environment. Each assignment is
// interpolated against the special variables of its file and the mapping
// built so far, then merged with its assign, append, or prepend operator.
// Identical inputs always produce byte-identical results.
package environment
