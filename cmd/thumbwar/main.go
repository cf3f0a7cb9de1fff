// Package main runs the bundled thumb-war suite. Its thumb-war cases share one
// name, so duplicates are allowed by default.
//
//	thumbwar run
//	thumbwar run --format json --output .imprun/last-run.json
//	thumbwar last --output .imprun/last-run.json --failures
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/toejough/imprun/cli"
	"github.com/toejough/imprun/internal/thumbwar"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	code := cli.Execute(ctx, "thumbwar", os.Args[1:], thumbwar.Suite, cli.AllowDuplicates())

	stop()
	os.Exit(code)
}
