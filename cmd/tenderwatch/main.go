package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"tenderwatch/cmd/tenderwatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
