package main

import (
	"context"
	"os"

	"stocksync/internal/app"
	"stocksync/internal/config"
	"stocksync/internal/feed"
	"stocksync/internal/logger"
	"stocksync/internal/seller"
	"stocksync/internal/syncer"
)

func main() {
	log := logger.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		syncer.LogFailure(log.WithComponent("seller"), err)
		os.Exit(1)
	}
	if err := log.Configure(cfg.LogLevel, cfg.LogFormat, cfg.LogOutput, cfg.LogMaxAge); err != nil {
		log.WithError(err).Error("failed to configure logger")
		os.Exit(1)
	}
	if err := cfg.ValidateSeller(); err != nil {
		syncer.LogFailure(log.WithComponent("seller"), err)
		os.Exit(1)
	}

	markets := make([]syncer.Marketplace, 0, len(cfg.SellerAccounts))
	for _, a := range cfg.SellerAccounts {
		markets = append(markets, seller.New(cfg.SellerBaseURL, a.ClientID, a.APIKey, cfg.HTTPTimeout))
	}

	log.WithComponent("seller").WithFields(logger.Fields{"accounts": len(markets)}).Info("starting stock and price sync")
	app.Run(context.Background(), cfg, "stocksync_seller", feed.NewFetcher(cfg.FeedURL, cfg.HTTPTimeout), markets)
}
