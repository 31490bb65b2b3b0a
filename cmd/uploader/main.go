package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/attachkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/attachkeeper/internal/client/cli"
	"github.com/dmitrijs2005/attachkeeper/internal/client/config"
	"github.com/dmitrijs2005/attachkeeper/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stderr)

	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, "text", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(cfg, logger, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		if errors.Is(err, cli.ErrNotAllStored) {
			logger.Warn(ctx, err.Error())
			os.Exit(2)
		}
		log.Fatalf("%v", err)
	}
}
