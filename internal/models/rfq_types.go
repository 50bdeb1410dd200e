package models

import "time"

// RFQ statuses. An RFQ never reopens once closed.
const (
	RFQStatusOpen   = "open"
	RFQStatusQuoted = "quoted"
	RFQStatusClosed = "closed"
)

// Quote statuses.
const (
	QuoteStatusPending  = "pending"
	QuoteStatusAccepted = "accepted"
	QuoteStatusRejected = "rejected"
)

// RFQ is the model for the 'rfqs' table, a buyer-posted sourcing need.
type RFQ struct {
	ID          int64      `json:"id" db:"id"`
	BuyerID     int64      `json:"buyerId" db:"buyer_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Industry    string     `json:"industry" db:"industry"`
	Quantity    int        `json:"quantity" db:"quantity"`
	Unit        string     `json:"unit" db:"unit"`
	Budget      *float64   `json:"budget,omitempty" db:"budget"`
	Deadline    *time.Time `json:"deadline,omitempty" db:"deadline"`
	Status      string     `json:"status" db:"status"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	QuotesCount int `json:"quotesCount" db:"-"`
}

// Quote is the model for the 'quotes' table, a seller's priced response to an RFQ.
type Quote struct {
	ID         int64     `json:"id" db:"id"`
	RFQID      int64     `json:"rfqId" db:"rfq_id"`
	SupplierID int64     `json:"supplierId" db:"supplier_id"`
	BusinessID int64     `json:"businessId" db:"business_id"`
	UnitPrice  float64   `json:"unitPrice" db:"unit_price"`
	TotalPrice float64   `json:"totalPrice" db:"total_price"`
	MOQ        int       `json:"moq" db:"moq"`
	LeadTime   string    `json:"leadTime" db:"lead_time"`
	Notes      *string   `json:"notes,omitempty" db:"notes"`
	ValidUntil time.Time `json:"validUntil" db:"valid_until"`
	Status     string    `json:"status" db:"status"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	Business *BusinessRef `json:"business,omitempty" db:"-"`
}
