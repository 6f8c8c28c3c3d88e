package model

import "time"

// Record is one data row of the supplier feed.
//
// A row whose quantity or price text could not be read keeps the failure in
// QuantityErr or PriceErr. It only matters once a marketplace lists the code.
type Record struct {
	Row      int
	Code     string
	Quantity Quantity
	Price    int64 // whole currency units, valid only when HasPrice
	HasPrice bool

	QuantityErr error
	PriceErr    error
}

// StockUpdate is the desired stock level of one listed item.
type StockUpdate struct {
	OfferID  string
	Quantity int
}

// PriceUpdate is the desired price of one listed item, in whole currency units.
type PriceUpdate struct {
	OfferID string
	Price   int64
}

// RunReport is what a single account sync leaves behind.
type RunReport struct {
	RunID       string    `json:"run_id"`
	Marketplace string    `json:"marketplace"`
	Account     string    `json:"account"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Stocks      int       `json:"stocks"`
	NonEmpty    int       `json:"non_empty"`
	Prices      int       `json:"prices"`
	ErrorKind   string    `json:"error_kind,omitempty"`
	Error       string    `json:"error,omitempty"`
}
