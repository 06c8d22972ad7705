// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/websublime/wsconfig/cmd/wsconfig"

func main() {
	cmd.Execute()
}
