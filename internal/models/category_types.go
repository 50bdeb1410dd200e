package models

import "time"

// Category is the model for the 'categories' table (per-business product shelves).
type Category struct {
	ID          int64   `json:"id" db:"id"`
	BusinessID  int64   `json:"businessId" db:"business_id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
	Icon        *string `json:"icon,omitempty" db:"icon"`
	SortOrder   int     `json:"sortOrder" db:"sort_order"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	ProductCount int `json:"productCount" db:"-"`
}
