// Command runtest runs a scripted conversation against a REPL, checking
// each response against the expected output and return value.
//
// Usage:
//
//	runtest [flags] <test-file> [--] <command> ...
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	os.Exit(runMain())
}

func runMain() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Run(ctx, os.Args[1:], nil)
}
