// SPDX-License-Identifier: MPL-2.0

// Package config handles loading, validating and persisting the envoy
// configuration file. Configuration is written in CUE, validated against an
// embedded schema, and merged into defaults via Viper so that environment
// overrides keep working.
package config
