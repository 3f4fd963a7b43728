// Command vrpctl solves capacitated routing problems from a file.
package main

import (
	"errors"
	"fmt"
	"os"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, errNoSolution) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
