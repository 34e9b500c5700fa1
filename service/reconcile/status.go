package reconcile

import (
	"github.com/shopspring/decimal"

	entity "garment.GO/model/entity"
)

// Status is the derived order state. It is recomputed from lines on every
// read and never stored, so it cannot drift from the ledger.
type Status string

const (
	StatusOpen      Status = "open"
	StatusFinalized Status = "finalized"
)

// ComputeOrderStatus classifies an order from its already-loaded lines:
// finalized iff every line is fully delivered, open otherwise. Orders with no
// lines are excluded from listings by the caller, not here.
func ComputeOrderStatus(lines []entity.OrderLine) Status {
	for _, l := range lines {
		if l.RemainingQty > 0 {
			return StatusOpen
		}
	}
	return StatusFinalized
}

// Financials aggregates the money view of a set of lines.
// Original == Delivered + Remaining holds per line and in aggregate.
type Financials struct {
	Original  decimal.Decimal `json:"original"`
	Delivered decimal.Decimal `json:"delivered"`
	Remaining decimal.Decimal `json:"remaining"`
}

// ComputeFinancials totals original, delivered and remaining value over lines.
func ComputeFinancials(lines []entity.OrderLine) Financials {
	f := Financials{
		Original:  decimal.Zero,
		Delivered: decimal.Zero,
		Remaining: decimal.Zero,
	}
	for _, l := range lines {
		f.Original = f.Original.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.InitialQty))))
		f.Delivered = f.Delivered.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.DeliveredQty()))))
		f.Remaining = f.Remaining.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.RemainingQty))))
	}
	return f
}
