// Package seller talks to the seller marketplace API: client id and api key
// headers, catalog paginated by last_id.
package seller

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stocksync/internal/logger"
	"stocksync/internal/model"
	"stocksync/internal/transport"
)

const (
	DefaultBaseURL = "https://api-seller.ozon.ru"

	Name = "seller"

	listPageLimit  = 1000
	StockBatchSize = 100
	PriceBatchSize = 900

	currencyCode = "RUB"
)

type Client struct {
	baseURL  string
	clientID string
	http     *transport.Client
}

func New(baseURL, clientID, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		http: transport.New(timeout, http.Header{
			"Client-Id": {clientID},
			"Api-Key":   {apiKey},
		}),
	}
}

func (c *Client) Name() string    { return Name }
func (c *Client) Account() string { return c.clientID }

func (c *Client) BatchSizes() (stock, price int) {
	return StockBatchSize, PriceBatchSize
}

// ListOfferIDs walks the product list until the accumulated count reaches the
// reported total. An empty page or missing last_id also ends the walk so a
// misbehaving server cannot make it loop.
func (c *Client) ListOfferIDs(ctx context.Context) ([]string, error) {
	log := logger.GetLogger().WithComponent("seller").WithFields(logger.Fields{"client_id": c.clientID})
	url := c.baseURL + "/v2/product/list"

	var ids []string
	seen := make(map[string]bool)
	lastID := ""
	received := 0
	for page := 1; ; page++ {
		req := listRequest{
			Filter: listFilter{Visibility: "ALL"},
			LastID: lastID,
			Limit:  listPageLimit,
		}
		var resp listResponse
		if err := c.http.Do(ctx, http.MethodPost, url, req, &resp); err != nil {
			return nil, err
		}

		for _, item := range resp.Result.Items {
			if seen[item.OfferID] {
				continue
			}
			seen[item.OfferID] = true
			ids = append(ids, item.OfferID)
		}
		received += len(resp.Result.Items)

		log.WithFields(logger.Fields{"page": page, "items": len(resp.Result.Items), "total": resp.Result.Total}).Debug("catalog page")

		if received >= resp.Result.Total || len(resp.Result.Items) == 0 || resp.Result.LastID == "" || resp.Result.LastID == lastID {
			break
		}
		lastID = resp.Result.LastID
	}

	log.WithFields(logger.Fields{"offer_ids": len(ids)}).Info("catalog listed")
	return ids, nil
}

func (c *Client) UpdateStocks(ctx context.Context, stocks []model.StockUpdate) error {
	req := stocksRequest{Stocks: make([]stockItem, 0, len(stocks))}
	for _, s := range stocks {
		req.Stocks = append(req.Stocks, stockItem{OfferID: s.OfferID, Stock: s.Quantity})
	}
	return c.http.Do(ctx, http.MethodPost, c.baseURL+"/v1/product/import/stocks", req, nil)
}

func (c *Client) UpdatePrices(ctx context.Context, prices []model.PriceUpdate) error {
	req := pricesRequest{Prices: make([]priceItem, 0, len(prices))}
	for _, p := range prices {
		req.Prices = append(req.Prices, priceItem{
			AutoActionEnabled: "UNKNOWN",
			CurrencyCode:      currencyCode,
			OfferID:           p.OfferID,
			OldPrice:          "0",
			Price:             strconv.FormatInt(p.Price, 10),
		})
	}
	return c.http.Do(ctx, http.MethodPost, c.baseURL+"/v1/product/import/prices", req, nil)
}
