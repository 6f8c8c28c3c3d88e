package market

type listResponse struct {
	Result listResult `json:"result"`
}

type listResult struct {
	Paging              paging         `json:"paging"`
	OfferMappingEntries []mappingEntry `json:"offerMappingEntries"`
}

type paging struct {
	NextPageToken string `json:"nextPageToken,omitempty"`
}

type mappingEntry struct {
	Offer offer `json:"offer"`
}

type offer struct {
	ShopSku string `json:"shopSku"`
}

type stocksRequest struct {
	Skus []skuStock `json:"skus"`
}

type skuStock struct {
	Sku         string      `json:"sku"`
	WarehouseID int64       `json:"warehouseId"`
	Items       []stockItem `json:"items"`
}

type stockItem struct {
	Count     int    `json:"count"`
	Type      string `json:"type"`
	UpdatedAt string `json:"updatedAt"`
}

type pricesRequest struct {
	Offers []offerPrice `json:"offers"`
}

type offerPrice struct {
	ID    string     `json:"id"`
	Price priceValue `json:"price"`
}

type priceValue struct {
	Value      int64  `json:"value"`
	CurrencyID string `json:"currencyId"`
}
