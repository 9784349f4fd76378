// Package main provides the entry point for the oblat CLI.
package main

import (
	"os"

	"github.com/FMSoblaci/oblat-project-flow/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
