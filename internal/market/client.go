// Package market talks to the market partner API: bearer token, one
// campaign per fulfilment model, catalog paginated by page token.
package market

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stocksync/internal/logger"
	"stocksync/internal/model"
	"stocksync/internal/transport"
)

const (
	DefaultBaseURL = "https://api.partner.market.yandex.ru"

	Name = "market"

	listPageLimit  = 200
	StockBatchSize = 2000
	PriceBatchSize = 500

	stockType  = "FIT"
	currencyID = "RUR"
)

// Client is shared by every campaign of one token.
type Client struct {
	baseURL string
	http    *transport.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: transport.New(timeout, http.Header{
			"Authorization": {"Bearer " + token},
		}),
	}
}

// Campaign binds the client to one campaign and the warehouse its stock is
// reported for.
type Campaign struct {
	client      *Client
	campaignID  string
	warehouseID int64
	now         func() time.Time
}

func (c *Client) Campaign(campaignID string, warehouseID int64) *Campaign {
	return &Campaign{client: c, campaignID: campaignID, warehouseID: warehouseID, now: time.Now}
}

// WithClock replaces the clock used for stock timestamps.
func (c *Campaign) WithClock(now func() time.Time) *Campaign {
	c.now = now
	return c
}

func (c *Campaign) Name() string    { return Name }
func (c *Campaign) Account() string { return c.campaignID }

func (c *Campaign) BatchSizes() (stock, price int) {
	return StockBatchSize, PriceBatchSize
}

func (c *Campaign) endpoint(path string) string {
	return fmt.Sprintf("%s/campaigns/%s/%s", c.client.baseURL, url.PathEscape(c.campaignID), path)
}

// ListOfferIDs follows nextPageToken until the server stops sending one.
func (c *Campaign) ListOfferIDs(ctx context.Context) ([]string, error) {
	log := logger.GetLogger().WithComponent("market").WithFields(logger.Fields{"campaign_id": c.campaignID})

	var ids []string
	seen := make(map[string]bool)
	requested := make(map[string]bool)
	token := ""
	for page := 1; ; page++ {
		requested[token] = true

		q := url.Values{}
		q.Set("page_token", token)
		q.Set("limit", strconv.Itoa(listPageLimit))

		var resp listResponse
		if err := c.client.http.Do(ctx, http.MethodGet, c.endpoint("offer-mapping-entries")+"?"+q.Encode(), nil, &resp); err != nil {
			return nil, err
		}

		for _, e := range resp.Result.OfferMappingEntries {
			sku := e.Offer.ShopSku
			if seen[sku] {
				continue
			}
			seen[sku] = true
			ids = append(ids, sku)
		}

		log.WithFields(logger.Fields{"page": page, "entries": len(resp.Result.OfferMappingEntries)}).Debug("catalog page")

		token = resp.Result.Paging.NextPageToken
		if token == "" {
			break
		}
		if requested[token] {
			log.WithFields(logger.Fields{"page_token": token}).Warn("server repeated a page token, stopping")
			break
		}
	}

	log.WithFields(logger.Fields{"offer_ids": len(ids)}).Info("catalog listed")
	return ids, nil
}

func (c *Campaign) UpdateStocks(ctx context.Context, stocks []model.StockUpdate) error {
	updatedAt := c.now().UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
	req := stocksRequest{Skus: make([]skuStock, 0, len(stocks))}
	for _, s := range stocks {
		req.Skus = append(req.Skus, skuStock{
			Sku:         s.OfferID,
			WarehouseID: c.warehouseID,
			Items:       []stockItem{{Count: s.Quantity, Type: stockType, UpdatedAt: updatedAt}},
		})
	}
	return c.client.http.Do(ctx, http.MethodPut, c.endpoint("offers/stocks"), req, nil)
}

func (c *Campaign) UpdatePrices(ctx context.Context, prices []model.PriceUpdate) error {
	req := pricesRequest{Offers: make([]offerPrice, 0, len(prices))}
	for _, p := range prices {
		req.Offers = append(req.Offers, offerPrice{
			ID:    p.OfferID,
			Price: priceValue{Value: p.Price, CurrencyID: currencyID},
		})
	}
	return c.client.http.Do(ctx, http.MethodPost, c.endpoint("offer-prices/updates"), req, nil)
}
