package main

import (
	"os"

	"sealink/cmd/sealink/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
