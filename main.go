// SPDX-License-Identifier: MPL-2.0

// zipkit creates ZIP archives from files and in-memory data.
package main

import cmd "github.com/zipkit/zipkit/cmd/zipkit"

func main() {
	cmd.Execute()
}
