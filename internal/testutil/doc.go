// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that need to mutate
// process-wide state (environment variables, the working directory, the home
// directory) and restore it afterwards.
package testutil
