package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/inclick-mx/inclick-cli/internal/client/cli"
	"github.com/inclick-mx/inclick-cli/internal/client/config"
	"github.com/inclick-mx/inclick-cli/internal/logging"
)

func main() {
	cfg := config.LoadConfig()
	logger := logging.NewDefault(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
