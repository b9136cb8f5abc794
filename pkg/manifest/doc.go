// SPDX-License-Identifier: MPL-2.0

// Package manifest loads declarative archive jobs.
//
// A manifest names the output, the writer options and the inputs of one
// archive. It can be written in CUE (validated against the embedded #Manifest
// schema) or in TOML (strictly decoded, unknown keys rejected):
//
//	output: "dist/bundle.zip"
//	prefix: "build/"
//	files: ["build/app", "build/README.md"]
//	entries: [{name: "state.json", content: "{\"version\":1}"}]
//
// Relative paths inside a manifest resolve against the manifest's directory.
package manifest
