package main

import (
	"context"
	"os"

	"stocksync/internal/app"
	"stocksync/internal/config"
	"stocksync/internal/feed"
	"stocksync/internal/logger"
	"stocksync/internal/market"
	"stocksync/internal/syncer"
)

func main() {
	log := logger.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		syncer.LogFailure(log.WithComponent("market"), err)
		os.Exit(1)
	}
	if err := log.Configure(cfg.LogLevel, cfg.LogFormat, cfg.LogOutput, cfg.LogMaxAge); err != nil {
		log.WithError(err).Error("failed to configure logger")
		os.Exit(1)
	}
	if err := cfg.ValidateMarket(); err != nil {
		syncer.LogFailure(log.WithComponent("market"), err)
		os.Exit(1)
	}

	client := market.New(cfg.MarketBaseURL, cfg.MarketToken, cfg.HTTPTimeout)
	markets := make([]syncer.Marketplace, 0, len(cfg.MarketCampaigns))
	for _, c := range cfg.MarketCampaigns {
		markets = append(markets, client.Campaign(c.CampaignID, c.WarehouseID))
	}

	log.WithComponent("market").WithFields(logger.Fields{"campaigns": len(markets)}).Info("starting stock and price sync")
	app.Run(context.Background(), cfg, "stocksync_market", feed.NewFetcher(cfg.FeedURL, cfg.HTTPTimeout), markets)
}
