package main

import (
	"os"

	"crosspad/cmd/crosspad/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
