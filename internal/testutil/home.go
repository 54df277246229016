// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"runtime"
	"testing"
)

// SetHomeDir sets the platform's home directory environment variable
// (USERPROFILE on Windows, HOME elsewhere) and returns a cleanup function
// that restores the original value. os.UserHomeDir() honors these variables,
// so tests can redirect home-directory lookups to a temp dir.
func SetHomeDir(t testing.TB, dir string) func() {
	t.Helper()

	switch runtime.GOOS {
	case "windows":
		return MustSetenv(t, "USERPROFILE", dir)
	default:
		return MustSetenv(t, "HOME", dir)
	}
}
