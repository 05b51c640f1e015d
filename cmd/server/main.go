package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/devfeed/internal/buildinfo"
	"github.com/dmitrijs2005/devfeed/internal/logging"
	"github.com/dmitrijs2005/devfeed/internal/server"
	"github.com/dmitrijs2005/devfeed/internal/server/config"
)

func main() {
	fmt.Println(buildinfo.String())

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.NewJSON(os.Stdout, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}()

	app.Run(ctx)
}
