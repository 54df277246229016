// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride redirects config-file lookup away from the user's real
// home directory. Tests need this since os.UserHomeDir() ignores a faked
// HOME on some platforms (macOS runners in particular).
var configDirOverride string

// Reset drops the override. Register it with t.Cleanup next to
// SetConfigDirOverride so one test cannot leak its directory into the next.
func Reset() {
	configDirOverride = ""
}

// SetConfigDirOverride points config-file lookup at dir instead of the
// directory derived from os.UserHomeDir().
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
