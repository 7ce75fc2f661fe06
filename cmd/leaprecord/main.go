// Package main provides the leaprecord CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/leaprecord/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
