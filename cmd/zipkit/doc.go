// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for zipkit.
//
// The root command wires configuration, logging and error rendering; the
// create, run and config subcommands delegate to pkg/archive, pkg/manifest,
// pkg/sink and internal/config.
package cmd
