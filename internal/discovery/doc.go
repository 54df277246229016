// SPDX-License-Identifier: MPL-2.0

// Package discovery handles finding bundles and their command registries.
//
// A bundle is any directory that contains an envoy_env/ subdirectory. Bundles
// are discovered in the current directory (by walking up), then under each
// configured bundle root, scanned breadth-first to a bounded depth.
package discovery
