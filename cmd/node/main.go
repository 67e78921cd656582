package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jwhyun/spotdex/params"
	"github.com/jwhyun/spotdex/pkg/api"
	"github.com/jwhyun/spotdex/pkg/bridge"
	"github.com/jwhyun/spotdex/pkg/core/engine"
	"github.com/jwhyun/spotdex/pkg/events"
	"github.com/jwhyun/spotdex/pkg/storage"
	"github.com/jwhyun/spotdex/pkg/util"
)

func main() {
	cfg, err := params.LoadFromEnv("") // "" loads .env from the current directory
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := util.NewLoggerWithFile(cfg.Node.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.Node.LogFile)

	var store *storage.Store
	if cfg.Node.DBPath != "" {
		store, err = storage.Open(cfg.Node.DBPath)
		if err != nil {
			sugar.Fatalw("open_store_failed", "path", cfg.Node.DBPath, "err", err)
		}
		defer store.Close()
	}

	// The settlement core surfaces event records; the host decides where they
	// go. Here: structured logs plus the websocket hub.
	logEmitter := events.NewZapEmitter(sugar)

	eng, err := engine.New(engine.Params{
		BaseAsset:  cfg.Exchange.BaseAsset,
		QuoteAsset: cfg.Exchange.QuoteAsset,
		Store:      store,
		Tokens:     bridge.NewLogLedger(sugar),
		Emitter:    logEmitter, // hub joins below once the server exists
		Log:        sugar,
	})
	if err != nil {
		sugar.Fatalw("engine_init_failed", "err", err)
	}

	server := api.NewServer(eng, sugar, cfg.Node.CORSOrigin)
	eng.SetEmitter(events.Multi{logEmitter, server.Hub()})

	sugar.Infow("settlement_core_ready",
		"base", cfg.Exchange.BaseAsset.Hex(),
		"quote", cfg.Exchange.QuoteAsset.Hex(),
		"db", cfg.Node.DBPath,
	)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start(cfg.Node.APIAddr) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		sugar.Fatalw("api_server_failed", "err", err)
	case sig := <-sigCh:
		sugar.Infow("shutting_down", "signal", sig.String())
	}
}
