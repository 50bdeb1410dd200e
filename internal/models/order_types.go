package models

import "time"

// Order is the model for the 'orders' table.
// Exactly one business/seller per order; created together with its items.
// TotalAmount is derived: it must equal the sum of the items' total_price
// after every mutation.
type Order struct {
	ID           int64   `json:"id" db:"id"`
	BuyerID      int64   `json:"buyerId" db:"buyer_id"`
	SellerID     int64   `json:"sellerId" db:"seller_id"`
	BusinessID   int64   `json:"businessId" db:"business_id"`
	TotalAmount  float64 `json:"totalAmount" db:"total_amount"`
	Status       string  `json:"status" db:"status"`
	Note         *string `json:"note,omitempty" db:"note"`
	ResponseNote *string `json:"responseNote,omitempty" db:"response_note"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Joins (populated manually)
	Items    []OrderItem  `json:"items,omitempty" db:"-"`
	Business *BusinessRef `json:"business,omitempty" db:"-"`
}

// OrderItem is the model for the 'order_items' table.
// UnitPrice is a snapshot taken at creation (or explicit edit) time; it is
// never refreshed from the live product price.
type OrderItem struct {
	ID         int64   `json:"id" db:"id"`
	OrderID    int64   `json:"orderId" db:"order_id"`
	ProductID  int64   `json:"productId" db:"product_id"`
	Quantity   int     `json:"quantity" db:"quantity"`
	UnitPrice  float64 `json:"unitPrice" db:"unit_price"`
	TotalPrice float64 `json:"totalPrice" db:"total_price"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	ProductName string `json:"productName,omitempty" db:"-"`
}
