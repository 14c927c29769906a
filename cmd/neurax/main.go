package main

import (
	"os"

	"github.com/neurax-dev/neurax/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
