// Command tapec compiles tape-language programs to C.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/roach88/tapec/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}
