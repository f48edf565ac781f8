// Package main is the entry point for the convertd application.
package main

import (
	"os"

	"github.com/avpress/convertd/cmd/convertd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
