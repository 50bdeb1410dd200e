package orders

import "errors"

// ErrEmptyCart is returned when checkout is attempted with no cart lines.
var ErrEmptyCart = errors.New("cart is empty")

// CartLine is one cart row resolved against its product and owning business.
type CartLine struct {
	ProductID  int64
	BusinessID int64
	SellerID   int64
	Quantity   int
	UnitPrice  float64
}

// DraftItem is a to-be-created order item with the unit price snapshotted
// from the product at grouping time.
type DraftItem struct {
	ProductID  int64
	Quantity   int
	UnitPrice  float64
	TotalPrice float64
}

// OrderDraft is one per-business order computed from a buyer's cart, ready to
// be persisted.
type OrderDraft struct {
	BusinessID  int64
	SellerID    int64
	TotalAmount float64
	Items       []DraftItem
}

// GroupCart partitions cart lines by owning business and computes one draft
// order per business. Drafts preserve the order businesses first appear in
// the cart. All grouping and totals happen before anything is written, so a
// caller only starts persisting once the whole cart resolved cleanly.
func GroupCart(lines []CartLine) ([]OrderDraft, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	index := make(map[int64]int)
	drafts := make([]OrderDraft, 0)

	for _, line := range lines {
		i, ok := index[line.BusinessID]
		if !ok {
			i = len(drafts)
			index[line.BusinessID] = i
			drafts = append(drafts, OrderDraft{
				BusinessID: line.BusinessID,
				SellerID:   line.SellerID,
			})
		}

		item := DraftItem{
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.UnitPrice * float64(line.Quantity),
		}
		drafts[i].Items = append(drafts[i].Items, item)
		drafts[i].TotalAmount += item.TotalPrice
	}

	return drafts, nil
}
