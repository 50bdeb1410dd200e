package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/bizlink/bizlink-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Category Handlers (per-business product shelves) ---
//

// ListCategories is the handler for GET /v1/categories?businessId=...
func (h *Handlers) ListCategories(c *gin.Context) {
	businessID, err := strconv.ParseInt(c.Query("businessId"), 10, 64)
	if err != nil || businessID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "businessId required"})
		return
	}

	rows, err := h.DB.Query(`
		SELECT c.id, c.business_id, c.name, c.description, c.icon, c.sort_order, c.created_at,
		       (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id)
		FROM categories c
		WHERE c.business_id = ?
		ORDER BY c.sort_order ASC`, businessID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.BusinessID, &cat.Name, &cat.Description,
			&cat.Icon, &cat.SortOrder, &cat.CreatedAt, &cat.ProductCount); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan category"})
			return
		}
		categories = append(categories, cat)
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}

type CreateCategoryInput struct {
	BusinessID  int64   `json:"businessId" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	SortOrder   *int    `json:"sortOrder"`
}

// CreateCategory is the handler for POST /v1/categories (business owner only).
func (h *Handlers) CreateCategory(c *gin.Context) {
	userID := currentUserID(c)

	var input CreateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ownerID int64
	err := h.DB.QueryRow("SELECT user_id FROM businesses WHERE id = ?", input.BusinessID).Scan(&ownerID)
	if err != nil || ownerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	// Append to the end of the shelf unless the caller picked a position.
	sortOrder := 0
	if input.SortOrder != nil {
		sortOrder = *input.SortOrder
	} else {
		var max sql.NullInt64
		if err := h.DB.QueryRow("SELECT MAX(sort_order) FROM categories WHERE business_id = ?",
			input.BusinessID).Scan(&max); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to determine sort order"})
			return
		}
		if max.Valid {
			sortOrder = int(max.Int64) + 1
		}
	}

	now := time.Now()
	result, err := h.DB.Exec(`
		INSERT INTO categories (business_id, name, description, icon, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		input.BusinessID, input.Name, input.Description, input.Icon, sortOrder, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	categoryID, _ := result.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{"data": models.Category{
		ID:          categoryID,
		BusinessID:  input.BusinessID,
		Name:        input.Name,
		Description: input.Description,
		Icon:        input.Icon,
		SortOrder:   sortOrder,
		CreatedAt:   now,
	}})
}

// categoryOwner resolves a category to its business owner. A missing
// category surfaces as sql.ErrNoRows.
func (h *Handlers) categoryOwner(categoryID int64) (int64, error) {
	var ownerID int64
	err := h.DB.QueryRow(`
		SELECT b.user_id FROM categories c
		JOIN businesses b ON c.business_id = b.id
		WHERE c.id = ?`, categoryID).Scan(&ownerID)
	return ownerID, err
}

type CategoryPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	SortOrder   *int    `json:"sortOrder"`
}

// UpdateCategory is the handler for PUT /v1/categories/:id (business owner only).
func (h *Handlers) UpdateCategory(c *gin.Context) {
	userID := currentUserID(c)

	categoryID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	ownerID, err := h.categoryOwner(categoryID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch category"})
		return
	}
	if ownerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	var patch CategoryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err = h.DB.Exec(`
		UPDATE categories SET
			name = COALESCE(?, name),
			description = COALESCE(?, description),
			icon = COALESCE(?, icon),
			sort_order = COALESCE(?, sort_order)
		WHERE id = ?`,
		patch.Name, patch.Description, patch.Icon, patch.SortOrder, categoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	var cat models.Category
	err = h.DB.QueryRow(`
		SELECT c.id, c.business_id, c.name, c.description, c.icon, c.sort_order, c.created_at,
		       (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id)
		FROM categories c
		WHERE c.id = ?`, categoryID).Scan(&cat.ID, &cat.BusinessID, &cat.Name,
		&cat.Description, &cat.Icon, &cat.SortOrder, &cat.CreatedAt, &cat.ProductCount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cat})
}

// DeleteCategory is the handler for DELETE /v1/categories/:id (business owner only).
func (h *Handlers) DeleteCategory(c *gin.Context) {
	userID := currentUserID(c)

	categoryID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	ownerID, err := h.categoryOwner(categoryID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch category"})
		return
	}
	if ownerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	if _, err := h.DB.Exec("DELETE FROM categories WHERE id = ?", categoryID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"success": true}})
}
