// SPDX-License-Identifier: MPL-2.0

// Package sink opens archive destinations.
//
// A destination is either a plain filesystem path or a blob URL understood by
// gocloud.dev/blob. The file:// and mem:// schemes are registered by this
// package; mem:// keeps the archive in memory and drops it when the writer is
// closed, which makes it a dry-run destination. Other providers can be enabled
// by blank-importing their gocloud.dev driver.
package sink
