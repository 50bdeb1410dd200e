package models

import "time"

// Follow is the model for the 'follows' table (user follows business).
type Follow struct {
	ID         int64     `json:"id" db:"id"`
	FollowerID int64     `json:"followerId" db:"follower_id"`
	BusinessID int64     `json:"businessId" db:"business_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// ProductFavourite is the model for the 'product_favourites' table.
// (user_id, product_id) is unique.
type ProductFavourite struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	ProductID int64     `json:"productId" db:"product_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Post is the model for the 'posts' table (discover feed updates).
type Post struct {
	ID         int64  `json:"id" db:"id"`
	AuthorID   int64  `json:"authorId" db:"author_id"`
	BusinessID *int64 `json:"businessId,omitempty" db:"business_id"`
	Type       string `json:"type" db:"type"`
	Title      string `json:"title" db:"title"`
	Content    string `json:"content" db:"content"`
	City       string `json:"city" db:"city"`
	ImageURLs  string `json:"-" db:"image_urls"` // JSON array, stored raw

	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	Images     []string `json:"imageUrls" db:"-"`
	AuthorName string   `json:"authorName,omitempty" db:"-"`
}
