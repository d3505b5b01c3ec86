// Package main provides the phonebook CLI.
package main

import (
	"os"

	"github.com/mesh-intelligence/phonebook/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
