// Package main is the entry point for the hotspot CLI.
package main

import (
	"fmt"
	"os"

	"github.com/vcsinsight/hotspot/cmd"
	"github.com/vcsinsight/hotspot/internal/iocache"
)

func main() {
	err := cmd.Execute()
	iocache.CloseStores()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
