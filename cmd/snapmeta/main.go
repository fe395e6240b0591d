// ABOUTME: Main entry point for snapmeta
// ABOUTME: Runs the cobra command tree and maps failures to a non-zero exit
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "snapmeta: %v\n", err)
		os.Exit(1)
	}
}
