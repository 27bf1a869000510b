// Package main is the entry point for the transitctl terminal dashboard.
package main

import (
	"os"

	"github.com/randytsao24/transitdash/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
