package models

import "time"

// Product is the model for the 'products' table.
type Product struct {
	ID          int64   `json:"id" db:"id"`
	BusinessID  int64   `json:"businessId" db:"business_id"`
	CategoryID  *int64  `json:"categoryId,omitempty" db:"category_id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
	Price       float64 `json:"price" db:"price"`
	Category    string  `json:"category" db:"category"`
	ImageURLs   string  `json:"-" db:"image_urls"` // JSON array, stored raw
	IsAvailable bool    `json:"isAvailable" db:"is_available"`
	MOQ         *int    `json:"moq,omitempty" db:"moq"`
	Unit        *string `json:"unit,omitempty" db:"unit"`
	LeadTime    *string `json:"leadTime,omitempty" db:"lead_time"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Joins (populated manually)
	Images   []string     `json:"imageUrls" db:"-"`
	Business *BusinessRef `json:"business,omitempty" db:"-"`
}
