//go:build cli
// +build cli

package main

import "casegen/cmd"

func main() {
	cmd.Execute()
}
