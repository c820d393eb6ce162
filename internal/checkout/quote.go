package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/entity"
)

// Quote is the priced summary of a cart for one delivery zone.
type Quote struct {
	Lines       []entity.OrderLine `json:"lines"`
	ItemCount   int                `json:"item_count"`
	Subtotal    decimal.Decimal    `json:"subtotal"`
	DeliveryFee decimal.Decimal    `json:"delivery_fee"`
	Total       decimal.Decimal    `json:"total"`
	Zone        string             `json:"zone,omitempty"`
}

// Empty reports whether there is nothing to check out.
func (q Quote) Empty() bool {
	return len(q.Lines) == 0
}

// NewQuote snapshots the cart lines and prices them with policy.
func NewQuote(lines []entity.CartLine, zone string, policy FeePolicy) Quote {
	q := Quote{
		Lines:    SnapshotLines(lines),
		Subtotal: decimal.Zero,
		Zone:     zone,
	}
	for _, l := range lines {
		q.Subtotal = q.Subtotal.Add(l.Subtotal())
		q.ItemCount += l.Quantity
	}
	q.DeliveryFee = decimal.Zero
	if !q.Empty() {
		q.DeliveryFee = policy.Fee(q.Subtotal, zone)
	}
	q.Total = q.Subtotal.Add(q.DeliveryFee)
	return q
}

// SnapshotLines copies name, quantity and unit price out of the cart so the
// order no longer depends on the live catalog.
func SnapshotLines(lines []entity.CartLine) []entity.OrderLine {
	out := make([]entity.OrderLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, entity.OrderLine{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.Product.Price,
		})
	}
	return out
}
