package orders

import (
	"errors"
	"fmt"
)

// Status is an order's lifecycle state. Transitions are one-directional;
// delivered, rejected and cancelled are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
)

// Role of the identity requesting a transition, relative to the order.
type Role int

const (
	RoleBuyer Role = iota
	RoleSeller
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusConfirmed: true, StatusRejected: true, StatusCancelled: true},
	StatusConfirmed: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:   {StatusDelivered: true},
	StatusDelivered: {},
	StatusRejected:  {},
	StatusCancelled: {},
}

// ErrBuyerOnlyCancel: a buyer asked for any target other than cancelled.
var ErrBuyerOnlyCancel = errors.New("buyers can only cancel orders")

// ErrBuyerNotPending: a buyer tried to cancel an order that already left pending.
var ErrBuyerNotPending = errors.New("can only cancel pending orders")

// ErrSellerCancel: sellers never cancel, they reject from pending.
var ErrSellerCancel = errors.New("sellers cannot cancel, use rejected")

// InvalidTransitionError names the (current, target) pair that is not in the
// transition table.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

// IsValid reports whether s is one of the known order statuses.
func IsValid(s Status) bool {
	_, ok := validNext[s]
	return ok
}

// Transition checks whether role may move an order from its current status to
// the requested one. It returns nil when the move is allowed and makes no
// judgement about persistence; callers apply the new status themselves.
func Transition(role Role, from, to Status) error {
	if !IsValid(to) {
		return &InvalidTransitionError{From: from, To: to}
	}

	if role == RoleBuyer {
		if to != StatusCancelled {
			return ErrBuyerOnlyCancel
		}
		if from != StatusPending {
			return ErrBuyerNotPending
		}
		return nil
	}

	// Sellers follow the table, except that cancellation is reserved for
	// buyers even where the table would allow it.
	if to == StatusCancelled {
		return ErrSellerCancel
	}
	if !validNext[from][to] {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}
