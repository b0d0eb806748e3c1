// Package main is the entry point for the lazycommit application.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/chmouel/lazycommit/internal/bootstrap"
	"github.com/chmouel/lazycommit/internal/buildinfo"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	buildinfo.Set(version, commit, date, builtBy)
	buildinfo.Enrich()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := bootstrap.Run(ctx, os.Args, bootstrap.StdIO())
	stop()
	os.Exit(code)
}
