package model

import "fmt"

type QuantityKind int

const (
	QuantityExact QuantityKind = iota
	QuantityMoreThanTen
	QuantityReservedSingle
)

// MoreThanTenUnits is the stock pushed for items the supplier lists as ">10".
const MoreThanTenUnits = 100

// Quantity is the supplier's stock count. The feed uses ">10" for large
// stock and "1" for a single unit held in reserve, which is not for sale.
type Quantity struct {
	Kind QuantityKind
	N    int
}

func Exact(n int) Quantity { return Quantity{Kind: QuantityExact, N: n} }

func MoreThanTen() Quantity { return Quantity{Kind: QuantityMoreThanTen} }

func ReservedSingle() Quantity { return Quantity{Kind: QuantityReservedSingle} }

// Units is the stock level to publish.
func (q Quantity) Units() int {
	switch q.Kind {
	case QuantityMoreThanTen:
		return MoreThanTenUnits
	case QuantityReservedSingle:
		return 0
	default:
		return q.N
	}
}

func (q Quantity) String() string {
	switch q.Kind {
	case QuantityMoreThanTen:
		return ">10"
	case QuantityReservedSingle:
		return "1 (reserved)"
	default:
		return fmt.Sprintf("%d", q.N)
	}
}
