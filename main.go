// SPDX-License-Identifier: MPL-2.0

package main

import cmd "envoy-cli/cmd/envoy"

func main() {
	cmd.Execute()
}
