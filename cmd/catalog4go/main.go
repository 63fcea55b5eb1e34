// Command catalog4go deletes catalog titles, sweeps orphaned actors and
// migrates the catalog schema.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ammar0144/catalog4go/pkg/reaper"
)

// Exit codes
const (
	exitFailure  = 1
	exitDenied   = 2
	exitNotFound = 3
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		// a failed Result has already been printed
		if !errors.Is(err, errResultFailed) && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, reaper.ErrUnauthorized), errors.Is(err, reaper.ErrForbidden):
		return exitDenied
	case errors.Is(err, reaper.ErrNotFound):
		return exitNotFound
	default:
		return exitFailure
	}
}
