package main

import (
	"fmt"
	"os"

	"finanzas/internal/cli"
)

var Version = "dev"

func main() {
	cli.LoadEnvFile()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
