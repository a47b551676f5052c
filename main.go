// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/assetgen/assetgen/cmd/assetgen"

func main() {
	cmd.Execute()
}
