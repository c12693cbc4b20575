package main

import (
	"fmt"
	"os"

	"github.com/reservation_insight/backend/internal/errs"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if kind := errs.KindOf(err); kind != "" {
			fmt.Fprintf(os.Stderr, "error [%s]: %v\n", kind, err)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
