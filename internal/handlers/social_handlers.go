package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bizlink/bizlink-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Follow & Favourite Handlers ---
//

// CheckFollow is the handler for GET /v1/follows?businessId=N
func (h *Handlers) CheckFollow(c *gin.Context) {
	userID := currentUserID(c)

	businessID, err := strconv.ParseInt(c.Query("businessId"), 10, 64)
	if err != nil || businessID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid businessId"})
		return
	}

	var exists bool
	if err := h.DB.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = ? AND business_id = ?)`,
		userID, businessID).Scan(&exists); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check follow"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"isFollowing": exists}})
}

type ToggleFollowInput struct {
	BusinessID int64 `json:"businessId" binding:"required"`
}

// ToggleFollow is the handler for POST /v1/follows
// Follows the business if not followed, unfollows it otherwise.
func (h *Handlers) ToggleFollow(c *gin.Context) {
	userID := currentUserID(c)

	var input ToggleFollowInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var businessExists bool
	if err := h.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM businesses WHERE id = ?)",
		input.BusinessID).Scan(&businessExists); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch business"})
		return
	}
	if !businessExists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}

	result, err := h.DB.Exec("DELETE FROM follows WHERE follower_id = ? AND business_id = ?",
		userID, input.BusinessID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update follow"})
		return
	}
	deleted, _ := result.RowsAffected()
	if deleted > 0 {
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"isFollowing": false}})
		return
	}

	if _, err := h.DB.Exec(`
		INSERT INTO follows (follower_id, business_id, created_at) VALUES (?, ?, ?)`,
		userID, input.BusinessID, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update follow"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"isFollowing": true}})
}

// ListFavourites is the handler for GET /v1/favourites
// Returns the caller's favourited products with their business ref.
func (h *Handlers) ListFavourites(c *gin.Context) {
	userID := currentUserID(c)

	rows, err := h.DB.Query(`
		SELECT `+productColumns+`
		FROM product_favourites f
		JOIN products p ON f.product_id = p.id
		JOIN businesses b ON p.business_id = b.id
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch favourites"})
		return
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan favourite"})
			return
		}
		products = append(products, product)
	}

	c.JSON(http.StatusOK, gin.H{"data": products})
}

type FavouriteInput struct {
	ProductID int64 `json:"productId" binding:"required"`
}

// AddFavourite is the handler for POST /v1/favourites
// Idempotent: favouriting an already-favourited product is a no-op.
func (h *Handlers) AddFavourite(c *gin.Context) {
	userID := currentUserID(c)

	var input FavouriteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var productExists bool
	if err := h.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)",
		input.ProductID).Scan(&productExists); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}
	if !productExists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if _, err := h.DB.Exec(`
		INSERT INTO product_favourites (user_id, product_id, created_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE user_id = user_id`,
		userID, input.ProductID, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add favourite"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"favourited": true}})
}

// RemoveFavourite is the handler for DELETE /v1/favourites/:productId
func (h *Handlers) RemoveFavourite(c *gin.Context) {
	userID := currentUserID(c)
	productID, ok := paramID(c, "productId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	result, err := h.DB.Exec("DELETE FROM product_favourites WHERE user_id = ? AND product_id = ?",
		userID, productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove favourite"})
		return
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Favourite not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"favourited": false}})
}
