// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"fmt"
	"path/filepath"

	"envoy-cli/pkg/bundle"
)

// Special interpolation variable names. They are computed per environment
// file from its location and shadow user-defined variables of the same name.
const (
	// SpecialFile is the absolute path of the file being processed.
	SpecialFile = "__FILE__"
	// SpecialBundle is the bundle root directory (parent of envoy_env).
	SpecialBundle = "__BUNDLE__"
	// SpecialBundleEnv is the envoy_env directory itself.
	SpecialBundleEnv = "__BUNDLE_ENV__"
	// SpecialBundleName is the bundle's directory name.
	SpecialBundleName = "__BUNDLE_NAME__"
)

// SpecialVars computes the built-in interpolation scope for one environment
// file. The bundle root is found by walking up from the file toward the
// filesystem root looking for an envoy_env directory; files outside any
// bundle use their own directory for both root and env dir. Paths use
// forward slashes on every platform so values stay portable inside files.
func SpecialVars(path string) (map[string]string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve environment file path %q: %w", path, err)
	}

	dir := filepath.Dir(abs)
	envDir, root := "", ""
	for cur := dir; ; {
		if filepath.Base(cur) == bundle.EnvDirName {
			envDir = cur
			root = filepath.Dir(cur)
			break
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}
	if root == "" {
		root = dir
		envDir = dir
	}

	return map[string]string{
		SpecialFile:       filepath.ToSlash(abs),
		SpecialBundle:     filepath.ToSlash(root),
		SpecialBundleEnv:  filepath.ToSlash(envDir),
		SpecialBundleName: filepath.Base(root),
	}, nil
}
