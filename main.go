package main

import (
	"os"

	"github.com/verdantlabs/savings/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
