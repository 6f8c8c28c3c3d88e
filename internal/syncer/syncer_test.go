package syncer

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"
	"time"

	"stocksync/internal/model"
	"stocksync/internal/syncerr"
)

type fakeMarket struct {
	name, account string
	ids           []string
	listErr       error
	stockErr      error
	stockSize     int
	priceSize     int

	stockCalls [][]model.StockUpdate
	priceCalls [][]model.PriceUpdate
}

func (f *fakeMarket) Name() string    { return f.name }
func (f *fakeMarket) Account() string { return f.account }

func (f *fakeMarket) BatchSizes() (int, int) { return f.stockSize, f.priceSize }

func (f *fakeMarket) ListOfferIDs(context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]string(nil), f.ids...), nil
}

func (f *fakeMarket) UpdateStocks(_ context.Context, s []model.StockUpdate) error {
	f.stockCalls = append(f.stockCalls, s)
	return f.stockErr
}

func (f *fakeMarket) UpdatePrices(_ context.Context, p []model.PriceUpdate) error {
	f.priceCalls = append(f.priceCalls, p)
	return nil
}

type memRecorder struct {
	reports []model.RunReport
	err     error
}

func (m *memRecorder) Record(_ context.Context, r model.RunReport) error {
	m.reports = append(m.reports, r)
	return m.err
}

func scenarioFeed() []model.Record {
	return []model.Record{
		{Code: "A1", Quantity: model.MoreThanTen(), Price: 100, HasPrice: true},
		{Code: "A2", Quantity: model.ReservedSingle(), Price: 50, HasPrice: true},
	}
}

func TestSyncScenario(t *testing.T) {
	m := &fakeMarket{name: "seller", account: "c1", ids: []string{"A1", "A2", "A3"}, stockSize: 2, priceSize: 10}

	sum, err := New(nil).Sync(context.Background(), m, scenarioFeed())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	wantStocks := []model.StockUpdate{{OfferID: "A1", Quantity: 100}, {OfferID: "A2"}, {OfferID: "A3"}}
	if !reflect.DeepEqual(sum.Stocks, wantStocks) {
		t.Fatalf("stocks = %v", sum.Stocks)
	}
	if !reflect.DeepEqual(sum.NonEmpty, wantStocks[:1]) {
		t.Fatalf("non empty = %v", sum.NonEmpty)
	}
	wantPrices := []model.PriceUpdate{{OfferID: "A1", Price: 100}, {OfferID: "A2", Price: 50}}
	if !reflect.DeepEqual(sum.Prices, wantPrices) {
		t.Fatalf("prices = %v", sum.Prices)
	}

	if len(m.stockCalls) != 2 || len(m.stockCalls[0]) != 2 || len(m.stockCalls[1]) != 1 {
		t.Fatalf("stock batches = %v", m.stockCalls)
	}
	if len(m.priceCalls) != 1 || !reflect.DeepEqual(m.priceCalls[0], wantPrices) {
		t.Fatalf("price batches = %v", m.priceCalls)
	}
}

func TestSyncListFailureUploadsNothing(t *testing.T) {
	listErr := &syncerr.TransportError{Op: "POST", URL: "/v2/product/list", StatusCode: http.StatusInternalServerError}
	m := &fakeMarket{name: "seller", account: "c1", listErr: listErr, stockSize: 100, priceSize: 100}

	_, err := New(nil).Sync(context.Background(), m, scenarioFeed())
	var te *syncerr.TransportError
	if !errors.As(err, &te) || te.StatusCode != http.StatusInternalServerError {
		t.Fatalf("err = %v, want TransportError 500", err)
	}
	if len(m.stockCalls)+len(m.priceCalls) != 0 {
		t.Fatalf("uploads attempted after list failure")
	}
}

func TestSyncStockFailureSkipsPrices(t *testing.T) {
	m := &fakeMarket{
		name: "market", account: "42", ids: []string{"A1", "A2", "A3"},
		stockErr:  &syncerr.TransportError{Op: "PUT", StatusCode: http.StatusBadRequest},
		stockSize: 1, priceSize: 1,
	}

	_, err := New(nil).Sync(context.Background(), m, scenarioFeed())
	if syncerr.Classify(err) != syncerr.KindTransport {
		t.Fatalf("err = %v", err)
	}
	if len(m.stockCalls) != 1 || len(m.priceCalls) != 0 {
		t.Fatalf("stock calls %d, price calls %d", len(m.stockCalls), len(m.priceCalls))
	}
}

func TestRunContinuesAfterFailure(t *testing.T) {
	failing := &fakeMarket{name: "market", account: "fbs", listErr: context.DeadlineExceeded, stockSize: 10, priceSize: 10}
	healthy := &fakeMarket{name: "market", account: "dbs", ids: []string{"A1"}, stockSize: 10, priceSize: 10}
	rec := &memRecorder{err: errors.New("redis down")}

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(rec)
	s.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	results := s.Run(context.Background(), []Marketplace{failing, healthy}, scenarioFeed())
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].Kind != syncerr.KindTimeout || results[0].Report.ErrorKind != "timeout" {
		t.Fatalf("first result = %+v", results[0])
	}
	if results[1].Err != nil || results[1].Report.Stocks != 1 || results[1].Report.NonEmpty != 1 {
		t.Fatalf("second result = %+v", results[1])
	}
	if len(healthy.stockCalls) != 1 {
		t.Fatalf("healthy account not synced")
	}

	if len(rec.reports) != 2 {
		t.Fatalf("recorded %d reports", len(rec.reports))
	}
	if rec.reports[0].RunID == "" || rec.reports[0].RunID != rec.reports[1].RunID {
		t.Fatalf("run ids %q %q", rec.reports[0].RunID, rec.reports[1].RunID)
	}
	if !rec.reports[1].FinishedAt.After(rec.reports[1].StartedAt) {
		t.Fatalf("report times %v %v", rec.reports[1].StartedAt, rec.reports[1].FinishedAt)
	}
}

func TestRecordersJoinErrors(t *testing.T) {
	boom := errors.New("boom")
	a, b := &memRecorder{err: boom}, &memRecorder{}

	err := Recorders{a, b}.Record(context.Background(), model.RunReport{RunID: "r1"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if len(a.reports) != 1 || len(b.reports) != 1 {
		t.Fatalf("reports = %d %d", len(a.reports), len(b.reports))
	}
	if err := (Recorders{}).Record(context.Background(), model.RunReport{}); err != nil {
		t.Fatalf("empty recorders: %v", err)
	}
}

type memHistory struct {
	last map[string]model.RunReport
	err  error
}

func (h memHistory) Last(_ context.Context, marketplace, account string) (model.RunReport, bool, error) {
	rep, ok := h.last[marketplace+":"+account]
	return rep, ok, h.err
}

func TestRunAttachesPreviousReport(t *testing.T) {
	fbs := &fakeMarket{name: "market", account: "fbs", ids: []string{"A1"}, stockSize: 10, priceSize: 10}
	dbs := &fakeMarket{name: "market", account: "dbs", ids: []string{"A1"}, stockSize: 10, priceSize: 10}

	s := New(nil)
	s.History = memHistory{last: map[string]model.RunReport{
		"market:fbs": {RunID: "old", ErrorKind: "timeout"},
	}}
	results := s.Run(context.Background(), []Marketplace{fbs, dbs}, scenarioFeed())

	if p := results[0].Previous; p == nil || p.RunID != "old" || p.ErrorKind != "timeout" {
		t.Fatalf("previous = %+v", p)
	}
	if results[1].Previous != nil {
		t.Fatalf("previous = %+v, want nil", results[1].Previous)
	}
	if results[0].Err != nil || results[0].Report.RunID == "old" {
		t.Fatalf("first result = %+v", results[0])
	}
}

func TestRunIgnoresHistoryErrors(t *testing.T) {
	m := &fakeMarket{name: "seller", account: "c1", ids: []string{"A1"}, stockSize: 10, priceSize: 10}

	s := New(nil)
	s.History = memHistory{err: errors.New("redis down")}
	results := s.Run(context.Background(), []Marketplace{m}, scenarioFeed())
	if results[0].Err != nil || results[0].Previous != nil || len(m.stockCalls) != 1 {
		t.Fatalf("result = %+v", results[0])
	}
}
