// Package main is the entry point for the groupcast CLI.
package main

import (
	"errors"
	"os"

	"groupcast/cmd/groupcast/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		var exitErr *commands.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
