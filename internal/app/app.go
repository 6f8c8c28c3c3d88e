// Package app wires config, logging, metrics and report stores around a
// sync run. Both command line tools go through Run.
package app

import (
	"context"

	"stocksync/internal/config"
	"stocksync/internal/db"
	"stocksync/internal/logger"
	"stocksync/internal/model"
	"stocksync/internal/observability"
	"stocksync/internal/repository"
	"stocksync/internal/syncer"
)

// FeedSource yields the supplier records shared by every account.
type FeedSource interface {
	Fetch(ctx context.Context) ([]model.Record, error)
}

// Run fetches the feed once and syncs every account. Failures are logged per
// account; the returned results carry them for the caller.
func Run(ctx context.Context, cfg *config.Config, job string, src FeedSource, markets []syncer.Marketplace) []syncer.Result {
	log := logger.GetLogger().WithComponent(job)

	observability.Start(cfg.MetricsPort)
	defer func() {
		if err := observability.Push(cfg.PushgatewayURL, job); err != nil {
			log.WithError(err).Warn("failed to push metrics")
		}
	}()

	recorders, history, closeStores := openStores(ctx, cfg, log)
	defer closeStores()

	records, err := src.Fetch(ctx)
	if err != nil {
		syncer.LogFailure(log, err)
		return nil
	}
	observability.FeedRecords.Set(float64(len(records)))

	s := syncer.New(recorders)
	s.History = history
	results := s.Run(ctx, markets, records)

	for _, r := range results {
		if r.Err != nil {
			continue
		}
		log.WithFields(logger.Fields{
			"marketplace": r.Report.Marketplace,
			"account":     r.Report.Account,
			"stocks":      r.Report.Stocks,
			"non_empty":   r.Report.NonEmpty,
			"prices":      r.Report.Prices,
		}).Info("sync finished")
	}
	return results
}

// openStores connects the optional report stores. A store that cannot be
// reached is skipped with a warning. Previous runs are read from Redis when it
// is configured, from Postgres otherwise.
func openStores(ctx context.Context, cfg *config.Config, log *logger.Entry) (syncer.Recorders, syncer.History, func()) {
	var recs syncer.Recorders
	var history syncer.History
	var closers []func()

	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Warn("postgres unavailable, run history disabled")
		} else {
			repo := &repository.ReportRepository{DB: pool}
			if err := repo.Migrate(ctx); err != nil {
				log.WithError(err).Warn("failed to create sync_runs")
			}
			recs = append(recs, repo)
			history = repo
			closers = append(closers, pool.Close)
		}
	}

	if cfg.RedisURL != "" {
		client, err := db.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, status store disabled")
		} else {
			store := &repository.StatusStore{Client: client}
			recs = append(recs, store)
			history = store
			closers = append(closers, func() { client.Close() })
		}
	}

	return recs, history, func() {
		for _, c := range closers {
			c()
		}
	}
}
