package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mailshop/internal/bot"
	"mailshop/internal/codeapi"
	"mailshop/internal/config"
	"mailshop/internal/httpserver"
	"mailshop/internal/logging"
	"mailshop/internal/shop"
	"mailshop/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	var cfg config.Config
	if err := cfg.ParseFlags(); err != nil {
		logging.Logg.Error("Configuration error", "error", err)
		os.Exit(1)
	}
	logging.Logg = logging.NewLogger(cfg.LogLevel)

	db := &store.Database{}
	if err := db.NewStorage(cfg.DBDsn); err != nil {
		logging.Logg.Error("Storage initialization error", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logging.Logg.Error("Telegram API error", "error", err)
		os.Exit(1)
	}

	codes := codeapi.NewClient(cfg.HotmailAPIURL, cfg.GmailAPIURL)
	shopSvc := shop.New(db)
	b := bot.New(api, db, shopSvc, codes, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go b.Run(ctx)

	serv := httpserver.New(cfg.OpsAddress, db)
	go func() {
		logging.Logg.Info("Starting ops server", "address", cfg.OpsAddress)
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logg.Error("Ops server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logging.Logg.Info("Shutting down gracefully")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := serv.Shutdown(shutdownCtx); err != nil {
		logging.Logg.Error("Ops server shutdown error", "error", err)
		os.Exit(1)
	}
	logging.Logg.Info("Server stopped")
}
