package main

import (
	"fmt"
	"os"

	"github.com/isdelr/bookfinder-be/internal/client/cli"
)

func main() {
	if err := cli.NewRootCommand(cli.Options{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
