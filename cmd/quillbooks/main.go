// Package main is the entry point for the quillbooks CLI.
package main

import (
	"os"

	"github.com/quillbooks/backend/cmd/quillbooks/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
