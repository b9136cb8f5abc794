// SPDX-License-Identifier: MPL-2.0

// Package types holds small validated value types shared by the zipkit
// packages. Each type exposes a Validate method returning a typed error that
// wraps a package-level sentinel, so callers can use errors.Is and errors.As.
package types
