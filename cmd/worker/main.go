package main

import (
	"context"
	"os/signal"
	"syscall"

	"quotes-service/internal/bootstrap"
	"quotes-service/internal/config"
	"quotes-service/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	log := logx.L()
	defer func() { _ = log.Sync() }()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := bootstrap.Init(ctx, cfg, log)
	if err != nil {
		log.Fatal("init worker", zap.Error(err))
	}
	defer cleanup()

	if len(cfg.WatchSymbols) == 0 {
		log.Fatal("no symbols to refresh (WATCH_SYMBOLS)")
	}
	w, err := app.RefreshWorker()
	if err != nil {
		log.Fatal("init refresh worker", zap.Error(err))
	}
	w.Start(ctx)
}
