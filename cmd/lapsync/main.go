package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"lapsync/internal/services"
)

// exitCanceled follows the shell convention for SIGINT.
const exitCanceled = 130

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(exitCanceled)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(services.ExitCode(err))
	}
}
