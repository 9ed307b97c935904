// SPDX-License-Identifier: MPL-2.0

package main

import cmd "rmm-cli/cmd/rmm"

func main() {
	cmd.Execute()
}
