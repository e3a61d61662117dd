package main

import (
	"fmt"
	"os"

	"github.com/Conceptual-Machines/harmonia-api/internal/cli"
)

func main() {
	if err := cli.NewRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
