package feed

import (
	"fmt"
	"strings"

	"stocksync/internal/model"
	"stocksync/internal/syncerr"
)

// HeaderRow is the zero-based row holding column names. The rows above it
// are the supplier's preamble.
const HeaderRow = 17

const (
	ColumnCode     = "Код"
	ColumnQuantity = "Количество"
	ColumnPrice    = "Цена"
)

type columns struct {
	code, quantity, price int
}

// ParseRows turns decoded sheet rows into feed records. Rows without a code
// carry no item and are skipped. A cell beyond the end of its row is absent.
//
// Only the sheet layout can fail the whole feed. An unreadable quantity or
// price is kept on its record as a FormatError naming the row.
func ParseRows(source string, rows [][]string) ([]model.Record, error) {
	if len(rows) <= HeaderRow {
		return nil, syncerr.Formatf(source, "sheet has %d rows, header expected at row %d", len(rows), HeaderRow+1)
	}
	cols, err := locateColumns(rows[HeaderRow])
	if err != nil {
		return nil, &syncerr.FormatError{Source: source, Err: err}
	}

	var records []model.Record
	for i := HeaderRow + 1; i < len(rows); i++ {
		row := rows[i]
		code, ok := cell(row, cols.code)
		if !ok {
			continue
		}

		rec := model.Record{Row: i + 1, Code: code}

		qtyText, _ := cell(row, cols.quantity)
		if qty, err := ParseQuantity(qtyText); err != nil {
			rec.QuantityErr = syncerr.Formatf(source, "row %d, code %s: %v", i+1, code, err)
		} else {
			rec.Quantity = qty
		}

		if priceText, ok := cell(row, cols.price); ok {
			if price, err := ParsePrice(priceText); err != nil {
				rec.PriceErr = syncerr.Formatf(source, "row %d, code %s: %v", i+1, code, err)
			} else {
				rec.Price, rec.HasPrice = price, true
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func locateColumns(header []string) (columns, error) {
	cols := columns{code: -1, quantity: -1, price: -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case ColumnCode:
			cols.code = i
		case ColumnQuantity:
			cols.quantity = i
		case ColumnPrice:
			cols.price = i
		}
	}

	var missing []string
	if cols.code < 0 {
		missing = append(missing, ColumnCode)
	}
	if cols.quantity < 0 {
		missing = append(missing, ColumnQuantity)
	}
	if cols.price < 0 {
		missing = append(missing, ColumnPrice)
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("header row %d lacks columns %s", HeaderRow+1, strings.Join(missing, ", "))
	}
	return cols, nil
}

func cell(row []string, i int) (string, bool) {
	if i >= len(row) {
		return "", false
	}
	v := strings.TrimSpace(row[i])
	return v, v != ""
}
