package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/devfeed/internal/buildinfo"
	"github.com/dmitrijs2005/devfeed/internal/client/app"
	"github.com/dmitrijs2005/devfeed/internal/client/cli"
	"github.com/dmitrijs2005/devfeed/internal/client/config"
	"github.com/dmitrijs2005/devfeed/internal/logging"
)

func main() {
	fmt.Println(buildinfo.String())

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.NewText(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ac, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer ac.Close()

	ac.Start(ctx)
	cli.NewApp(ac, os.Stdin, os.Stdout).Root(ctx)
}
