// Command windlass is the entry point for the windlass CLI.
package main

import (
	"os"

	"github.com/windlass-labs/windlass/internal/adapters/driving/cli"
	"github.com/windlass-labs/windlass/internal/logger"
)

func main() {
	if err := cli.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
