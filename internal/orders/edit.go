package orders

import (
	"errors"
	"fmt"
)

// ErrNotPending is returned when a line-item edit targets an order that has
// already left the pending state.
var ErrNotPending = errors.New("only pending orders can be edited")

// UnknownItemError names a payload item id that does not belong to the order.
type UnknownItemError struct {
	ItemID int64
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("item %d does not belong to this order", e.ItemID)
}

// InvalidQuantityError names a payload entry with a negative quantity.
type InvalidQuantityError struct {
	ItemID   int64
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for item %d", e.Quantity, e.ItemID)
}

// Item is an existing order item as loaded from storage.
type Item struct {
	ID        int64
	Quantity  int
	UnitPrice float64
}

// Change is one {itemId, quantity} pair from the edit payload.
type Change struct {
	ItemID   int64
	Quantity int
}

// ItemUpdate is an item surviving the edit with its recomputed line total.
type ItemUpdate struct {
	ID         int64
	Quantity   int
	TotalPrice float64
}

// EditResult is the full outcome of an edit: which items to update, which to
// delete, and the order's new total. TotalAmount always equals the sum of the
// updates' TotalPrice.
type EditResult struct {
	Updates     []ItemUpdate
	Deletes     []int64
	TotalAmount float64
}

// ApplyEdit validates the whole batch of changes against the order's current
// item set, then computes the resulting state. An item with quantity 0 in the
// payload, or omitted from it entirely, is deleted. An item with quantity > 0
// keeps its snapshot unit price and gets quantity and line total updated.
// Nothing is computed if any change fails validation.
func ApplyEdit(items []Item, changes []Change) (EditResult, error) {
	byID := make(map[int64]Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	// Validate the entire batch before touching anything.
	requested := make(map[int64]int, len(changes))
	for _, ch := range changes {
		if _, ok := byID[ch.ItemID]; !ok {
			return EditResult{}, &UnknownItemError{ItemID: ch.ItemID}
		}
		if ch.Quantity < 0 {
			return EditResult{}, &InvalidQuantityError{ItemID: ch.ItemID, Quantity: ch.Quantity}
		}
		requested[ch.ItemID] = ch.Quantity
	}

	var result EditResult
	for _, it := range items {
		qty, present := requested[it.ID]
		if !present || qty == 0 {
			result.Deletes = append(result.Deletes, it.ID)
			continue
		}

		update := ItemUpdate{
			ID:         it.ID,
			Quantity:   qty,
			TotalPrice: it.UnitPrice * float64(qty),
		}
		result.Updates = append(result.Updates, update)
		result.TotalAmount += update.TotalPrice
	}

	return result, nil
}
