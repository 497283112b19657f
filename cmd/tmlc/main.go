package main

import (
	"os"

	"github.com/hivellm/tml/cmd/tmlc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
