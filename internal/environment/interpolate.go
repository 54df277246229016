// SPDX-License-Identifier: MPL-2.0

package environment

import "regexp"

// refPattern matches {$NAME} references. Names follow the usual identifier
// rules: a letter or underscore followed by letters, digits, or underscores.
var refPattern = regexp.MustCompile(`\{\$([A-Za-z_][A-Za-z0-9_]*)\}`)

// Expand replaces every {$NAME} reference in value. Special variables take
// precedence over the scope; a name defined in neither expands to the empty
// string. The empty-string fallback is part of the sandboxing contract: in
// closed mode only seeded variables are in scope, so an unknown reference
// must not fall back to the host environment.
//
// Expansion is a single pass against already-expanded scope values, so no
// reference chain can recurse or cycle.
func Expand(value string, scope, specials map[string]string) string {
	return refPattern.ReplaceAllStringFunc(value, func(match string) string {
		name := match[2 : len(match)-1]
		if v, ok := specials[name]; ok {
			return v
		}
		if v, ok := scope[name]; ok {
			return v
		}
		return ""
	})
}
