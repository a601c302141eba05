package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Set by -ldflags "-X main.buildVersion=...".
var buildVersion = "dev"

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "[-]", err)
		}
		os.Exit(1)
	}
}
