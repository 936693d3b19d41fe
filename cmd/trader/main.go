package main

import (
	"context"
	"fmt"
	"os"

	"TickTrader/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "trader: %v\n", err)
		os.Exit(1)
	}
}
