// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// It defines an error type that carries the failed operation, the resource
// involved and remediation suggestions, plus a catalog of Markdown-formatted
// issue pages rendered in the terminal when things go wrong.
package issue
