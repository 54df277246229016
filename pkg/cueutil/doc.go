// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared helpers for validating user-supplied CUE
// files: size limits and error formatting that surfaces the JSON path of
// the offending field instead of CUE's raw multi-line diagnostics.
package cueutil
