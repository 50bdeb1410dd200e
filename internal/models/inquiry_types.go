package models

import "time"

// Inquiry statuses. Response fields are set only on confirmation.
const (
	InquiryStatusPending   = "pending"
	InquiryStatusConfirmed = "confirmed"
	InquiryStatusRejected  = "rejected"
)

// ProductInquiry is the model for the 'product_inquiries' table, a
// lightweight buyer query against a single product (distinct from an RFQ).
type ProductInquiry struct {
	ID        int64   `json:"id" db:"id"`
	UserID    int64   `json:"userId" db:"user_id"`
	ProductID int64   `json:"productId" db:"product_id"`
	Type      string  `json:"type" db:"type"` // "quote" or "order"
	Quantity  int     `json:"quantity" db:"quantity"`
	Message   *string `json:"message,omitempty" db:"message"`
	Status    string  `json:"status" db:"status"`

	ResponsePrice   *float64   `json:"responsePrice,omitempty" db:"response_price"`
	ResponseMessage *string    `json:"responseMessage,omitempty" db:"response_message"`
	RespondedAt     *time.Time `json:"respondedAt,omitempty" db:"responded_at"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
