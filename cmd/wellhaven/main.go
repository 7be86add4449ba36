package main

import (
	"github.com/asad/wellhaven/internal/cli"
)

// main is the entry point for the Wellhaven application.
// It delegates to the CLI package which handles command parsing and execution.
func main() {
	cli.Execute()
}
