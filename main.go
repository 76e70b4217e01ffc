package main

import (
	"os"

	"github.com/codepad-dev/codepad/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
