package seller

type listRequest struct {
	Filter listFilter `json:"filter"`
	LastID string     `json:"last_id"`
	Limit  int        `json:"limit"`
}

type listFilter struct {
	Visibility string `json:"visibility"`
}

type listResponse struct {
	Result listResult `json:"result"`
}

type listResult struct {
	Items  []listItem `json:"items"`
	Total  int        `json:"total"`
	LastID string     `json:"last_id"`
}

type listItem struct {
	ProductID int64  `json:"product_id"`
	OfferID   string `json:"offer_id"`
}

type stocksRequest struct {
	Stocks []stockItem `json:"stocks"`
}

type stockItem struct {
	OfferID string `json:"offer_id"`
	Stock   int    `json:"stock"`
}

type pricesRequest struct {
	Prices []priceItem `json:"prices"`
}

type priceItem struct {
	AutoActionEnabled string `json:"auto_action_enabled"`
	CurrencyCode      string `json:"currency_code"`
	OfferID           string `json:"offer_id"`
	OldPrice          string `json:"old_price"`
	Price             string `json:"price"`
}
