// SPDX-License-Identifier: MPL-2.0

// Command dotimport resolves dotted unit names against directory trees of
// unit files.
package main

import cmd "github.com/invowk/dotimport/cmd/dotimport"

func main() {
	cmd.Execute()
}
