// Package main provides the card server binary: an HTTP server hosting
// named rooms, each running one card game instance.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/DavePearce/OnlineCards/internal/config"
	"github.com/DavePearce/OnlineCards/internal/dispatch"
	"github.com/DavePearce/OnlineCards/internal/game/cards"
	"github.com/DavePearce/OnlineCards/internal/observability"
	"github.com/DavePearce/OnlineCards/internal/room"
	"github.com/DavePearce/OnlineCards/internal/server"
	"github.com/DavePearce/OnlineCards/internal/transport"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = built-in defaults")
	flag.Parse()

	ctx := context.Background()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting card server",
		zap.Strings("candidate_addrs", cfg.Server.Addrs()),
	)

	registry := room.NewRegistry(logger)
	factory := cards.NewFactory(cards.NewCryptoSource())
	dispatcher := dispatch.NewDispatcher(registry, factory, logger)
	handler := transport.NewHandler(dispatcher, registry, logger)
	httpSrv := transport.NewServer(cfg.Server, handler, logger)

	lc := server.NewLifecycle(logger)
	lc.Add("registry", &server.FuncService{
		StartFn: func() error { return nil },
		StopFn:  registry.Close,
	})
	lc.Add("http", httpSrv)

	if err := lc.Run(ctx); err != nil {
		logger.Fatal("lifecycle error", zap.Error(err))
	}

	logger.Info("card server exited", zap.Duration("uptime", time.Since(start)))
}
