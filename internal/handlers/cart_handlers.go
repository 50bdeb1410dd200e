package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/bizlink/bizlink-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Cart Handlers ---
//

// GetCart is the handler for GET /v1/cart
func (h *Handlers) GetCart(c *gin.Context) {
	userID := currentUserID(c)

	rows, err := h.DB.Query(`
		SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
		       p.id, p.business_id, p.category_id, p.name, p.description, p.price, p.category,
		       p.image_urls, p.is_available, p.moq, p.unit, p.lead_time, p.created_at, p.updated_at,
		       b.id, b.name, b.city
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		JOIN businesses b ON p.business_id = b.id
		WHERE ci.user_id = ?
		ORDER BY ci.updated_at DESC`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		var item models.CartItem
		var p models.Product
		var biz models.BusinessRef
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
			&p.ID, &p.BusinessID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.Category,
			&p.ImageURLs, &p.IsAvailable, &p.MOQ, &p.Unit, &p.LeadTime, &p.CreatedAt, &p.UpdatedAt,
			&biz.ID, &biz.Name, &biz.City,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan cart item"})
			return
		}
		p.Images = jsonList(p.ImageURLs)
		p.Business = &biz
		item.Product = &p
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

type AddToCartInput struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity"`
}

// AddToCart is the handler for POST /v1/cart
// Adds the quantity onto an existing row for the same product, or creates one.
func (h *Handlers) AddToCart(c *gin.Context) {
	userID := currentUserID(c)

	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	quantity := input.Quantity
	if quantity < 1 {
		quantity = 1
	}

	var exists int64
	if err := h.DB.QueryRow("SELECT id FROM products WHERE id = ?", input.ProductID).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	now := time.Now()
	_, err := h.DB.Exec(`
		INSERT INTO cart_items (user_id, product_id, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			quantity = quantity + VALUES(quantity),
			updated_at = VALUES(updated_at)`,
		userID, input.ProductID, quantity, now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	var item models.CartItem
	err = h.DB.QueryRow(`
		SELECT id, user_id, product_id, quantity, created_at, updated_at
		FROM cart_items WHERE user_id = ? AND product_id = ?`,
		userID, input.ProductID).Scan(
		&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart item"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

type SetCartQuantityInput struct {
	Quantity *int `json:"quantity" binding:"required,gte=0"`
}

// UpdateCartItem is the handler for PUT /v1/cart/:productId
// Quantity 0 removes the row.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	userID := currentUserID(c)
	productID, ok := paramID(c, "productId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	var input SetCartQuantityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if *input.Quantity == 0 {
		if _, err := h.DB.Exec("DELETE FROM cart_items WHERE user_id = ? AND product_id = ?",
			userID, productID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove cart item"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"success": true, "quantity": 0}})
		return
	}

	result, err := h.DB.Exec(`
		UPDATE cart_items SET quantity = ?, updated_at = ?
		WHERE user_id = ? AND product_id = ?`,
		*input.Quantity, time.Now(), userID, productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		// Distinguish "row untouched because same quantity" from "no row".
		var exists int64
		if err := h.DB.QueryRow("SELECT id FROM cart_items WHERE user_id = ? AND product_id = ?",
			userID, productID).Scan(&exists); err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}
	}

	var item models.CartItem
	err = h.DB.QueryRow(`
		SELECT id, user_id, product_id, quantity, created_at, updated_at
		FROM cart_items WHERE user_id = ? AND product_id = ?`,
		userID, productID).Scan(
		&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

// DeleteCartItem is the handler for DELETE /v1/cart/:productId
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	userID := currentUserID(c)
	productID, ok := paramID(c, "productId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	if _, err := h.DB.Exec("DELETE FROM cart_items WHERE user_id = ? AND product_id = ?",
		userID, productID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove cart item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"success": true}})
}
