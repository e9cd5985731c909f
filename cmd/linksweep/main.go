package main

import (
	"os"

	"github.com/CareerServices-Pace/LinkSweep/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
