package main

import (
	"fmt"
	"os"

	"github.com/rogelioGuerrero/dte-pro-sub002/cmd/dte-engine/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
