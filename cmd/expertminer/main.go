// Package main provides the entry point for the expertminer CLI.
package main

import (
	"fmt"
	"os"

	"expertminer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
