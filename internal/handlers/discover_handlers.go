package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bizlink/bizlink-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Discover & Post Handlers ---
//

// GetDiscover is the handler for GET /v1/discover
// Aggregates the homepage feed: recent businesses and posts (optionally
// filtered by city) plus the latest products.
func (h *Handlers) GetDiscover(c *gin.Context) {
	city := c.Query("city")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	bizWhere := ""
	bizArgs := []interface{}{}
	if city != "" {
		bizWhere = "WHERE b.city LIKE ? "
		bizArgs = append(bizArgs, "%"+city+"%")
	}

	bizRows, err := h.DB.Query(`
		SELECT b.id, b.user_id, b.name, b.slug, b.category, b.description, b.city, b.district,
		       b.company_type, b.industry, b.avatar_url, b.cover_image_url, b.tags, b.is_verified,
		       b.created_at, b.updated_at,
		       (SELECT COUNT(*) FROM follows f WHERE f.business_id = b.id) AS follower_count,
		       (SELECT COUNT(*) FROM products p WHERE p.business_id = b.id) AS product_count
		FROM businesses b `+bizWhere+`
		ORDER BY b.created_at DESC
		LIMIT ?`, append(bizArgs, limit)...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch businesses"})
		return
	}
	defer bizRows.Close()

	businesses := []models.Business{}
	for bizRows.Next() {
		var b models.Business
		if err := bizRows.Scan(&b.ID, &b.UserID, &b.Name, &b.Slug, &b.Category, &b.Description,
			&b.City, &b.District, &b.CompanyType, &b.Industry, &b.AvatarURL, &b.CoverImageURL,
			&b.TagsRaw, &b.IsVerified, &b.CreatedAt, &b.UpdatedAt,
			&b.FollowerCount, &b.ProductCount); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan business"})
			return
		}
		b.Tags = businessTags(b.TagsRaw)
		businesses = append(businesses, b)
	}
	bizRows.Close()

	// Products are not city-filtered; the feed always shows the newest listings.
	prodRows, err := h.DB.Query("SELECT "+productColumns+`
		FROM products p
		JOIN businesses b ON p.business_id = b.id
		ORDER BY p.created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	defer prodRows.Close()

	products := []models.Product{}
	for prodRows.Next() {
		p, err := scanProduct(prodRows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product"})
			return
		}
		products = append(products, p)
	}
	prodRows.Close()

	posts, err := h.queryPosts(city, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"businesses": businesses,
		"products":   products,
		"posts":      posts,
	}})
}

func (h *Handlers) queryPosts(city string, limit int) ([]models.Post, error) {
	where := ""
	args := []interface{}{}
	if city != "" {
		where = "WHERE po.city LIKE ? "
		args = append(args, "%"+city+"%")
	}
	args = append(args, limit)

	rows, err := h.DB.Query(`
		SELECT po.id, po.author_id, po.business_id, po.type, po.title, po.content, po.city,
		       po.image_urls, po.created_at, u.full_name
		FROM posts po
		JOIN users u ON po.author_id = u.id `+where+`
		ORDER BY po.created_at DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.BusinessID, &p.Type, &p.Title, &p.Content,
			&p.City, &p.ImageURLs, &p.CreatedAt, &p.AuthorName); err != nil {
			return nil, err
		}
		p.Images = jsonList(p.ImageURLs)
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListPosts is the handler for GET /v1/posts
func (h *Handlers) ListPosts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	posts, err := h.queryPosts(c.Query("city"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": posts})
}

type CreatePostInput struct {
	BusinessID *int64   `json:"businessId"`
	Type       string   `json:"type" binding:"required"`
	Title      string   `json:"title" binding:"required"`
	Content    string   `json:"content" binding:"required"`
	City       string   `json:"city" binding:"required"`
	ImageURLs  []string `json:"imageUrls"`
}

// CreatePost is the handler for POST /v1/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	userID := currentUserID(c)

	var input CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	result, err := h.DB.Exec(`
		INSERT INTO posts (author_id, business_id, type, title, content, city, image_urls, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, input.BusinessID, input.Type, input.Title, strings.TrimSpace(input.Content),
		input.City, jsonListRaw(input.ImageURLs), now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	postID, _ := result.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{"data": models.Post{
		ID:         postID,
		AuthorID:   userID,
		BusinessID: input.BusinessID,
		Type:       input.Type,
		Title:      input.Title,
		Content:    strings.TrimSpace(input.Content),
		City:       input.City,
		CreatedAt:  now,
		Images:     input.ImageURLs,
	}})
}
