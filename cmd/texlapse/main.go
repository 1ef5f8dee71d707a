package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"texlapse/internal/clierr"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "texlapse:", err)
		}
		os.Exit(clierr.ExitCodeOf(err))
	}
}
