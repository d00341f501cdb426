package main

import (
	"os"

	"github.com/satriadi/qaforge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
