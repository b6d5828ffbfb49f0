package main

import (
	"os"

	"github.com/cityatlas/eventpipe/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(cli.ExitError)
	}
}
