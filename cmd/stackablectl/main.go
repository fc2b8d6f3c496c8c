package main

import (
	"os"

	"github.com/stackabletech/stackable/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
