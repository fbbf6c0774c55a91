// Package main provides the entry point for the weave CLI.
package main

import (
	"os"

	"github.com/weavehq/weave/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
