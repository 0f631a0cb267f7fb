// Package main is the entry point for keyscope.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dshills/keyscope/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		var ce *exitCodeError
		if errors.As(err, &ce) {
			return ce.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// exitCodeError ends the process with a code after output was already
// written.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
