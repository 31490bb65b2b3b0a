package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/attachkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/attachkeeper/internal/logging"
	"github.com/dmitrijs2005/attachkeeper/internal/server"
	"github.com/dmitrijs2005/attachkeeper/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	config.LoadDotEnv()
	cfg := config.LoadConfig()
	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
