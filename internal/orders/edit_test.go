package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEditZeroQuantityDeletes(t *testing.T) {
	items := []Item{{ID: 1, Quantity: 3, UnitPrice: 10}}

	result, err := ApplyEdit(items, []Change{{ItemID: 1, Quantity: 0}})
	require.NoError(t, err)

	assert.Empty(t, result.Updates)
	assert.Equal(t, []int64{1}, result.Deletes)
	assert.Equal(t, 0.0, result.TotalAmount)
}

func TestApplyEditOmittedItemDeleted(t *testing.T) {
	items := []Item{
		{ID: 1, Quantity: 2, UnitPrice: 10},
		{ID: 2, Quantity: 1, UnitPrice: 5},
	}

	// Only item 1 appears in the payload; item 2 is dropped.
	result, err := ApplyEdit(items, []Change{{ItemID: 1, Quantity: 2}})
	require.NoError(t, err)

	require.Len(t, result.Updates, 1)
	assert.Equal(t, int64(1), result.Updates[0].ID)
	assert.Equal(t, []int64{2}, result.Deletes)
	assert.Equal(t, 20.0, result.TotalAmount)
}

func TestApplyEditRecomputesFromSnapshotPrice(t *testing.T) {
	items := []Item{{ID: 1, Quantity: 3, UnitPrice: 10}}

	result, err := ApplyEdit(items, []Change{{ItemID: 1, Quantity: 7}})
	require.NoError(t, err)

	require.Len(t, result.Updates, 1)
	up := result.Updates[0]
	assert.Equal(t, 7, up.Quantity)
	assert.Equal(t, 70.0, up.TotalPrice)
	assert.Equal(t, 70.0, result.TotalAmount)
}

func TestApplyEditUnknownItem(t *testing.T) {
	items := []Item{{ID: 1, Quantity: 1, UnitPrice: 1}}

	_, err := ApplyEdit(items, []Change{{ItemID: 99, Quantity: 2}})
	var ue *UnknownItemError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, int64(99), ue.ItemID)
}

func TestApplyEditNegativeQuantity(t *testing.T) {
	items := []Item{{ID: 1, Quantity: 1, UnitPrice: 1}}

	_, err := ApplyEdit(items, []Change{{ItemID: 1, Quantity: -2}})
	var qe *InvalidQuantityError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, int64(1), qe.ItemID)
	assert.Equal(t, -2, qe.Quantity)
}

func TestApplyEditValidatesWholeBatchFirst(t *testing.T) {
	items := []Item{
		{ID: 1, Quantity: 1, UnitPrice: 1},
		{ID: 2, Quantity: 1, UnitPrice: 1},
	}

	// A valid change for item 1 followed by a bad one: nothing is computed.
	result, err := ApplyEdit(items, []Change{
		{ItemID: 1, Quantity: 5},
		{ItemID: 2, Quantity: -1},
	})
	require.Error(t, err)
	assert.Empty(t, result.Updates)
	assert.Empty(t, result.Deletes)
}

func TestApplyEditTotalEqualsUpdateSum(t *testing.T) {
	items := []Item{
		{ID: 1, Quantity: 2, UnitPrice: 3.5},
		{ID: 2, Quantity: 4, UnitPrice: 1.25},
		{ID: 3, Quantity: 1, UnitPrice: 9},
	}

	result, err := ApplyEdit(items, []Change{
		{ItemID: 1, Quantity: 1},
		{ItemID: 2, Quantity: 8},
		{ItemID: 3, Quantity: 0},
	})
	require.NoError(t, err)

	var sum float64
	for _, up := range result.Updates {
		sum += up.TotalPrice
	}
	assert.Equal(t, sum, result.TotalAmount)
	assert.Equal(t, []int64{3}, result.Deletes)
}
