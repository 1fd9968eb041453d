package main

import (
	"os"

	"github.com/reachwell/reachwell/cmd/reachwell/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
