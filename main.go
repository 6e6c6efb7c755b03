package main

import (
	"os"

	"github.com/healthflow/roster/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
