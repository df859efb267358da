package main

import (
	"os"

	"tally/cmd/tally/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
