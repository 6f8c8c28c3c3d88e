package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stocksync/internal/batch"
	"stocksync/internal/logger"
	"stocksync/internal/model"
	"stocksync/internal/observability"
	"stocksync/internal/reconcile"
	"stocksync/internal/syncerr"
)

// Marketplace is one marketplace account: its catalog and its bulk update
// endpoints.
type Marketplace interface {
	Name() string
	Account() string
	ListOfferIDs(ctx context.Context) ([]string, error)
	UpdateStocks(ctx context.Context, stocks []model.StockUpdate) error
	UpdatePrices(ctx context.Context, prices []model.PriceUpdate) error
	BatchSizes() (stock, price int)
}

// Recorder stores the outcome of an account sync.
type Recorder interface {
	Record(ctx context.Context, report model.RunReport) error
}

// Recorders fans a report out to every configured store.
type Recorders []Recorder

func (rs Recorders) Record(ctx context.Context, report model.RunReport) error {
	var errs []error
	for _, r := range rs {
		if err := r.Record(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// History looks up the stored outcome of an account's previous sync.
type History interface {
	Last(ctx context.Context, marketplace, account string) (model.RunReport, bool, error)
}

type Summary struct {
	Stocks   []model.StockUpdate
	NonEmpty []model.StockUpdate
	Prices   []model.PriceUpdate
}

type Result struct {
	Report  model.RunReport
	Summary Summary
	Err     error
	Kind    syncerr.Kind

	// Previous is the account's last stored report, nil when History has none.
	Previous *model.RunReport
}

type Syncer struct {
	Recorder Recorder
	History  History
	Now      func() time.Time
}

func New(rec Recorder) *Syncer {
	return &Syncer{Recorder: rec, Now: time.Now}
}

// Sync lists the account's catalog once, reconciles it with the feed and
// uploads stocks, then prices. Any error stops the account where it occurred.
func (s *Syncer) Sync(ctx context.Context, m Marketplace, records []model.Record) (Summary, error) {
	log := logger.GetLogger().WithComponent("syncer").WithFields(logger.Fields{
		"marketplace": m.Name(),
		"account":     m.Account(),
	})

	ids, err := m.ListOfferIDs(ctx)
	if err != nil {
		return Summary{}, err
	}
	observability.CatalogIdentifiers.WithLabelValues(m.Name(), m.Account()).Set(float64(len(ids)))

	stocks, prices := reconcile.Reconcile(records, ids)
	stockSize, priceSize := m.BatchSizes()

	err = batch.Upload(ctx, stocks, stockSize, func(ctx context.Context, chunk []model.StockUpdate) error {
		if err := m.UpdateStocks(ctx, chunk); err != nil {
			return err
		}
		observability.UploadedBatches.WithLabelValues(m.Name(), "stock").Inc()
		observability.UploadedItems.WithLabelValues(m.Name(), "stock").Add(float64(len(chunk)))
		return nil
	})
	if err != nil {
		return Summary{}, fmt.Errorf("upload stocks: %w", err)
	}

	err = batch.Upload(ctx, prices, priceSize, func(ctx context.Context, chunk []model.PriceUpdate) error {
		if err := m.UpdatePrices(ctx, chunk); err != nil {
			return err
		}
		observability.UploadedBatches.WithLabelValues(m.Name(), "price").Inc()
		observability.UploadedItems.WithLabelValues(m.Name(), "price").Add(float64(len(chunk)))
		return nil
	})
	if err != nil {
		return Summary{}, fmt.Errorf("upload prices: %w", err)
	}

	sum := Summary{Stocks: stocks, NonEmpty: reconcile.NonEmpty(stocks), Prices: prices}
	log.WithFields(logger.Fields{
		"identifiers": len(ids),
		"stocks":      len(sum.Stocks),
		"non_empty":   len(sum.NonEmpty),
		"prices":      len(sum.Prices),
	}).Info("account synced")
	return sum, nil
}

// Run syncs every account in order. A failing account is logged and
// recorded and does not stop the ones after it.
func (s *Syncer) Run(ctx context.Context, markets []Marketplace, records []model.Record) []Result {
	runID := uuid.New().String()
	results := make([]Result, 0, len(markets))

	for _, m := range markets {
		log := logger.GetLogger().WithComponent("syncer").WithFields(logger.Fields{
			"marketplace": m.Name(),
			"account":     m.Account(),
			"run_id":      runID,
		})
		prev := s.previous(ctx, log, m)

		started := s.now()
		sum, err := s.Sync(ctx, m, records)
		finished := s.now()
		observability.SyncDuration.WithLabelValues(m.Name()).Observe(finished.Sub(started).Seconds())

		res := Result{
			Summary:  sum,
			Err:      err,
			Previous: prev,
			Report: model.RunReport{
				RunID:       runID,
				Marketplace: m.Name(),
				Account:     m.Account(),
				StartedAt:   started,
				FinishedAt:  finished,
				Stocks:      len(sum.Stocks),
				NonEmpty:    len(sum.NonEmpty),
				Prices:      len(sum.Prices),
			},
		}
		if err != nil {
			res.Kind = syncerr.Classify(err)
			res.Report.ErrorKind = res.Kind.String()
			res.Report.Error = err.Error()
			observability.SyncErrors.WithLabelValues(m.Name(), res.Kind.String()).Inc()
			LogFailure(log, err)
		} else if prev != nil && prev.ErrorKind != "" {
			log.WithFields(logger.Fields{"previous_run_id": prev.RunID}).Info("account recovered from failed run")
		}

		if s.Recorder != nil {
			if rerr := s.Recorder.Record(ctx, res.Report); rerr != nil {
				log.WithError(rerr).Warn("failed to record run report")
			}
		}
		results = append(results, res)
	}
	return results
}

// LogFailure writes one line per error kind. Every Kind has its own case.
func LogFailure(log *logger.Entry, err error) {
	kind := syncerr.Classify(err)
	entry := log.WithError(err).WithFields(logger.Fields{"error_kind": kind.String()})
	switch kind {
	case syncerr.KindTimeout:
		entry.Error("request timed out")
	case syncerr.KindTransport:
		entry.Error("connection or HTTP error")
	case syncerr.KindFormat:
		entry.Error("supplier feed could not be parsed")
	case syncerr.KindConfig:
		entry.Error("invalid configuration")
	case syncerr.KindInternal:
		entry.Error("unexpected error")
	}
}

func (s *Syncer) previous(ctx context.Context, log *logger.Entry, m Marketplace) *model.RunReport {
	if s.History == nil {
		return nil
	}
	rep, ok, err := s.History.Last(ctx, m.Name(), m.Account())
	if err != nil {
		log.WithError(err).Warn("failed to read previous run")
		return nil
	}
	if !ok {
		return nil
	}
	log.WithFields(logger.Fields{
		"previous_run_id":     rep.RunID,
		"previous_finished":   rep.FinishedAt,
		"previous_error_kind": rep.ErrorKind,
	}).Debug("previous run")
	return &rep
}

func (s *Syncer) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
