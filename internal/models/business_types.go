package models

import "time"

// Business is the model for the 'businesses' table.
// One business per user (unique user_id).
type Business struct {
	ID            int64   `json:"id" db:"id"`
	UserID        int64   `json:"userId" db:"user_id"`
	Name          string  `json:"name" db:"name"`
	Slug          string  `json:"slug" db:"slug"`
	Category      string  `json:"category" db:"category"`
	Description   *string `json:"description,omitempty" db:"description"`
	City          string  `json:"city" db:"city"`
	District      *string `json:"district,omitempty" db:"district"`
	CompanyType   *string `json:"companyType,omitempty" db:"company_type"`
	Industry      *string `json:"industry,omitempty" db:"industry"`
	AvatarURL     *string `json:"avatarUrl,omitempty" db:"avatar_url"`
	CoverImageURL *string `json:"coverImageUrl,omitempty" db:"cover_image_url"`
	TagsRaw       *string `json:"-" db:"tags"` // JSON array, stored raw
	IsVerified    bool    `json:"isVerified" db:"is_verified"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Decoded / aggregate fields (not in the table, populated by handlers)
	Tags          []string `json:"tags" db:"-"`
	FollowerCount int      `json:"followerCount" db:"-"`
	ProductCount  int      `json:"productCount" db:"-"`
}

// BusinessRef is the shallow business projection embedded in product, order
// and quote responses.
type BusinessRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city,omitempty"`
}
