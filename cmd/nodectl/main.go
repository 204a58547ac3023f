package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/dmitrijs2005/nodestore/internal/app"
	"github.com/dmitrijs2005/nodestore/internal/cli"
	"github.com/dmitrijs2005/nodestore/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.LoadConfig()
	a, err := app.NewApp(cfg, os.Stderr)
	if err != nil {
		log.Printf("%v", err)
		return 1
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.InitSignalHandler(cancel)

	err = cli.NewRunner(a, os.Stdin, os.Stdout).Run(ctx, config.CommandArgs(os.Args[1:]))
	if ferr := a.FlushMetrics(); ferr != nil {
		log.Printf("write metrics: %v", ferr)
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, cli.ErrUsage):
		return 2
	default:
		log.Printf("%v", err)
		return 1
	}
}
