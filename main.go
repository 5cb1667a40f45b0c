package main

import (
	"os"

	"github.com/sanderkohnstamm/mavshark/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
