// Package main provides the docket CLI.
package main

import (
	"os"

	"github.com/mesh-intelligence/docket/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
