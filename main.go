// ./main.go
package main

import (
	"github.com/gyuri2020/AIOpsLab-fork/cmd"
)

// main is the entry point for the aiopslab CLI.
func main() {
	// Execute the root command defined in the cmd package.
	// This handles all command-line parsing, configuration, and execution.
	cmd.Execute()
}
