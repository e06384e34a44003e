// Command ragctl is a terminal client for the DocRAG api.
package main

import (
	"os"

	"github.com/akolanti/DocRAG/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
