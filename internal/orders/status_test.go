package orders

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSellerTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"pending to rejected", StatusPending, StatusRejected, true},
		{"confirmed to shipped", StatusConfirmed, StatusShipped, true},
		{"shipped to delivered", StatusShipped, StatusDelivered, true},
		{"pending to shipped", StatusPending, StatusShipped, false},
		{"pending to delivered", StatusPending, StatusDelivered, false},
		{"confirmed to rejected", StatusConfirmed, StatusRejected, false},
		{"confirmed to delivered", StatusConfirmed, StatusDelivered, false},
		{"shipped to confirmed", StatusShipped, StatusConfirmed, false},
		{"delivered is terminal", StatusDelivered, StatusShipped, false},
		{"rejected is terminal", StatusRejected, StatusConfirmed, false},
		{"cancelled is terminal", StatusCancelled, StatusConfirmed, false},
		{"no going back to pending", StatusConfirmed, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Transition(RoleSeller, tt.from, tt.to)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				var ite *InvalidTransitionError
				require.ErrorAs(t, err, &ite)
				assert.Equal(t, tt.from, ite.From)
				assert.Equal(t, tt.to, ite.To)
			}
		})
	}
}

func TestSellerCanNeverCancel(t *testing.T) {
	// Even from pending, where the table itself would allow it.
	for _, from := range []Status{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered} {
		err := Transition(RoleSeller, from, StatusCancelled)
		assert.ErrorIs(t, err, ErrSellerCancel, "from %s", from)
	}
}

func TestBuyerCanOnlyCancelPending(t *testing.T) {
	require.NoError(t, Transition(RoleBuyer, StatusPending, StatusCancelled))

	// Any non-cancel target is rejected regardless of current status.
	for _, from := range []Status{StatusPending, StatusConfirmed, StatusShipped} {
		for _, to := range []Status{StatusConfirmed, StatusRejected, StatusShipped, StatusDelivered} {
			err := Transition(RoleBuyer, from, to)
			assert.ErrorIs(t, err, ErrBuyerOnlyCancel, "from %s to %s", from, to)
		}
	}

	// Cancelling anything past pending is rejected too.
	for _, from := range []Status{StatusConfirmed, StatusShipped, StatusDelivered, StatusRejected} {
		err := Transition(RoleBuyer, from, StatusCancelled)
		assert.ErrorIs(t, err, ErrBuyerNotPending, "from %s", from)
	}
}

func TestUnknownTargetStatus(t *testing.T) {
	err := Transition(RoleSeller, StatusPending, Status("archived"))
	var ite *InvalidTransitionError
	require.True(t, errors.As(err, &ite))
	assert.Equal(t, Status("archived"), ite.To)
	assert.Contains(t, err.Error(), "pending")
	assert.Contains(t, err.Error(), "archived")
}

func TestIsValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusRejected, StatusCancelled, StatusShipped, StatusDelivered} {
		assert.True(t, IsValid(s))
	}
	assert.False(t, IsValid(Status("processing")))
	assert.False(t, IsValid(Status("")))
}
