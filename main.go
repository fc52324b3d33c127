// Package main is the entry point for the ftqmap CLI.
package main

import "ftqmap.dev/pkg/ftqmap/cmd"

func main() {
	cmd.Execute()
}
