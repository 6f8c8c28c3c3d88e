package reconcile

import (
	"stocksync/internal/logger"
	"stocksync/internal/model"
)

// Reconcile computes the desired stock and price of every listed identifier.
//
// Each distinct identifier gets exactly one stock update: from the first feed
// record carrying its code, or zero when the feed does not mention it. Prices
// are emitted only for matched records that carry one. Stocks are ordered by
// feed position for matched items and then by identifier position; prices by
// feed position. Feed records for unlisted codes are dropped.
//
// A listed record with an unreadable quantity is skipped with a warning, so
// its identifier falls through to a later record or to zero. A listed record
// with an unreadable price still updates stock.
func Reconcile(records []model.Record, identifiers []string) ([]model.StockUpdate, []model.PriceUpdate) {
	log := logger.GetLogger().WithComponent("reconcile")

	listed := make(map[string]bool, len(identifiers))
	for _, id := range identifiers {
		listed[id] = true
	}

	matched := make(map[string]bool, len(identifiers))
	stocks := make([]model.StockUpdate, 0, len(listed))
	var prices []model.PriceUpdate
	unlisted, skipped := 0, 0

	for _, rec := range records {
		if !listed[rec.Code] {
			unlisted++
			continue
		}
		fields := logger.Fields{"code": rec.Code, "row": rec.Row}
		if matched[rec.Code] {
			log.WithFields(fields).Debug("duplicate feed record ignored")
			continue
		}
		if rec.QuantityErr != nil {
			log.WithFields(fields).WithError(rec.QuantityErr).Warn("feed record skipped")
			skipped++
			continue
		}
		matched[rec.Code] = true

		stocks = append(stocks, model.StockUpdate{OfferID: rec.Code, Quantity: rec.Quantity.Units()})
		switch {
		case rec.PriceErr != nil:
			log.WithFields(fields).WithError(rec.PriceErr).Warn("feed record price skipped")
		case !rec.HasPrice:
			log.WithFields(fields).Warn("feed record has no price")
		default:
			prices = append(prices, model.PriceUpdate{OfferID: rec.Code, Price: rec.Price})
		}
	}

	for _, id := range identifiers {
		if matched[id] {
			continue
		}
		// marks duplicates in identifiers as handled
		matched[id] = true
		stocks = append(stocks, model.StockUpdate{OfferID: id, Quantity: 0})
	}

	log.WithFields(logger.Fields{
		"records":     len(records),
		"identifiers": len(listed),
		"stocks":      len(stocks),
		"prices":      len(prices),
		"unlisted":    unlisted,
		"skipped":     skipped,
	}).Debug("reconciled")
	return stocks, prices
}

// NonEmpty returns the stock updates with a positive quantity.
func NonEmpty(stocks []model.StockUpdate) []model.StockUpdate {
	var out []model.StockUpdate
	for _, s := range stocks {
		if s.Quantity != 0 {
			out = append(out, s)
		}
	}
	return out
}
