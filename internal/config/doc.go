// SPDX-License-Identifier: MPL-2.0

// Package config handles zipkit user defaults using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/zipkit/config.cue (or $XDG_CONFIG_HOME on Linux,
// ~/Library/Application Support/zipkit/config.cue on macOS, %APPDATA%\zipkit\config.cue
// on Windows), then ./config.cue, and otherwise falls back to built-in defaults.
// ZIPKIT_* environment variables override file values (e.g. ZIPKIT_BUFFER_SIZE,
// ZIPKIT_UI_VERBOSE).
//
// Files are validated against the embedded config_schema.cue before they are
// merged into Viper.
package config
