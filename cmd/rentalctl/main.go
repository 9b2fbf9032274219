package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fastygo/rentals/domain"
	"github.com/fastygo/rentals/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates operator mistakes from store failures for scripts.
func exitCode(err error) int {
	switch {
	case domain.IsKind(err, domain.KindValidation),
		domain.IsKind(err, domain.KindTransition),
		domain.IsKind(err, domain.KindCapture):
		return 2
	case domain.IsKind(err, domain.KindTransport):
		return 3
	default:
		return 1
	}
}
