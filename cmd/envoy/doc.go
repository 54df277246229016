// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for envoy.
//
// This package implements the Cobra command hierarchy for the envoy CLI:
// the root command plus subcommands for running registered commands,
// listing and inspecting bundles, and managing configuration.
package cmd
