package main

import (
	"os"

	"github.com/fleetops/rotaplan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
