package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bizlink/bizlink-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Product Handlers ---
//

const productColumns = `p.id, p.business_id, p.category_id, p.name, p.description, p.price,
	p.category, p.image_urls, p.is_available, p.moq, p.unit, p.lead_time, p.created_at, p.updated_at,
	b.id, b.name, b.city`

func scanProduct(scanner interface{ Scan(...interface{}) error }) (models.Product, error) {
	var p models.Product
	var biz models.BusinessRef
	err := scanner.Scan(
		&p.ID, &p.BusinessID, &p.CategoryID, &p.Name, &p.Description, &p.Price,
		&p.Category, &p.ImageURLs, &p.IsAvailable, &p.MOQ, &p.Unit, &p.LeadTime,
		&p.CreatedAt, &p.UpdatedAt,
		&biz.ID, &biz.Name, &biz.City)
	if err != nil {
		return p, err
	}
	p.Images = jsonList(p.ImageURLs)
	p.Business = &biz
	return p, nil
}

// ListProducts is the handler for GET /v1/products
// Filters: businessId, category, search; paging: limit, offset.
func (h *Handlers) ListProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	where := "WHERE 1=1"
	args := []interface{}{}

	if businessID := c.Query("businessId"); businessID != "" {
		where += " AND p.business_id = ?"
		args = append(args, businessID)
	}
	if category := c.Query("category"); category != "" && category != "all" {
		where += " AND p.category = ?"
		args = append(args, category)
	}
	if search := c.Query("search"); search != "" {
		where += " AND (p.name LIKE ? OR p.description LIKE ?)"
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	if err := h.DB.QueryRow("SELECT COUNT(*) FROM products p "+where, args...).Scan(&total); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
		return
	}

	query := "SELECT " + productColumns + `
		FROM products p
		JOIN businesses b ON p.business_id = b.id ` + where + `
		ORDER BY p.created_at DESC
		LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product"})
			return
		}
		products = append(products, p)
	}

	c.JSON(http.StatusOK, gin.H{"data": products, "total": total, "limit": limit, "offset": offset})
}

type CreateProductInput struct {
	BusinessID  int64    `json:"businessId" binding:"required"`
	CategoryID  *int64   `json:"categoryId"`
	Name        string   `json:"name" binding:"required"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Category    string   `json:"category" binding:"required"`
	ImageURLs   []string `json:"imageUrls"`
	IsAvailable *bool    `json:"isAvailable"`
	MOQ         *int     `json:"moq"`
	Unit        *string  `json:"unit"`
	LeadTime    *string  `json:"leadTime"`
}

// CreateProduct is the handler for POST /v1/products (business owner only).
func (h *Handlers) CreateProduct(c *gin.Context) {
	userID := currentUserID(c)

	var input CreateProductInput
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

	available := true
	if input.IsAvailable != nil {
		available = *input.IsAvailable
	}

	now := time.Now()
	result, err := h.DB.Exec(`
		INSERT INTO products (business_id, category_id, name, description, price, category,
		                      image_urls, is_available, moq, unit, lead_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		input.BusinessID, input.CategoryID, input.Name, input.Description, *input.Price,
		input.Category, jsonListRaw(input.ImageURLs), available, input.MOQ, input.Unit,
		input.LeadTime, now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	productID, _ := result.LastInsertId()
	h.respondWithProduct(c, productID, http.StatusCreated)
}

func (h *Handlers) respondWithProduct(c *gin.Context, productID int64, status int) {
	row := h.DB.QueryRow("SELECT "+productColumns+`
		FROM products p
		JOIN businesses b ON p.business_id = b.id
		WHERE p.id = ?`, productID)

	p, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(status, gin.H{"data": p})
}

// GetProduct is the handler for GET /v1/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	productID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}
	h.respondWithProduct(c, productID, http.StatusOK)
}

// ProductPatch is the typed patch for PUT /v1/products/:id. Nil fields are
// left unchanged.
type ProductPatch struct {
	CategoryID  *int64   `json:"categoryId"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	ImageURLs   []string `json:"imageUrls"`
	IsAvailable *bool    `json:"isAvailable"`
	MOQ         *int     `json:"moq"`
	Unit        *string  `json:"unit"`
	LeadTime    *string  `json:"leadTime"`
}

// productOwner loads the owning user of a product's business. Returns
// sql.ErrNoRows when the product does not exist.
func (h *Handlers) productOwner(productID int64) (int64, error) {
	var ownerID int64
	err := h.DB.QueryRow(`
		SELECT b.user_id FROM products p
		JOIN businesses b ON p.business_id = b.id
		WHERE p.id = ?`, productID).Scan(&ownerID)
	return ownerID, err
}

// UpdateProduct is the handler for PUT /v1/products/:id (owner only).
func (h *Handlers) UpdateProduct(c *gin.Context) {
	userID := currentUserID(c)
	productID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	ownerID, err := h.productOwner(productID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}
	if ownerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	var patch ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if patch.Price != nil && *patch.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be >= 0"})
		return
	}

	var images *string
	if patch.ImageURLs != nil {
		encoded := jsonListRaw(patch.ImageURLs)
		images = &encoded
	}

	_, err = h.DB.Exec(`
		UPDATE products SET
			category_id  = COALESCE(?, category_id),
			name         = COALESCE(?, name),
			description  = COALESCE(?, description),
			price        = COALESCE(?, price),
			category     = COALESCE(?, category),
			image_urls   = COALESCE(?, image_urls),
			is_available = COALESCE(?, is_available),
			moq          = COALESCE(?, moq),
			unit         = COALESCE(?, unit),
			lead_time    = COALESCE(?, lead_time),
			updated_at   = ?
		WHERE id = ?`,
		patch.CategoryID, patch.Name, patch.Description, patch.Price, patch.Category,
		images, patch.IsAvailable, patch.MOQ, patch.Unit, patch.LeadTime,
		time.Now(), productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	h.respondWithProduct(c, productID, http.StatusOK)
}

// DeleteProduct is the handler for DELETE /v1/products/:id (owner only).
func (h *Handlers) DeleteProduct(c *gin.Context) {
	userID := currentUserID(c)
	productID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	ownerID, err := h.productOwner(productID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}
	if ownerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	if _, err := h.DB.Exec("DELETE FROM products WHERE id = ?", productID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"success": true}})
}

type CreateInquiryInput struct {
	Type     string  `json:"type"`
	Quantity int     `json:"quantity"`
	Message  *string `json:"message"`
}

// CreateInquiry is the handler for POST /v1/products/:id/inquiry
// A lightweight quote/order request against a single product.
func (h *Handlers) CreateInquiry(c *gin.Context) {
	userID := currentUserID(c)
	productID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	var exists int64
	if err := h.DB.QueryRow("SELECT id FROM products WHERE id = ?", productID).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	var input CreateInquiryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Anything that isn't an order request is a quote request.
	inquiryType := "quote"
	if input.Type == "order" {
		inquiryType = "order"
	}
	quantity := input.Quantity
	if quantity < 1 {
		quantity = 1
	}
	var message *string
	if input.Message != nil {
		if trimmed := strings.TrimSpace(*input.Message); trimmed != "" {
			message = &trimmed
		}
	}

	now := time.Now()
	result, err := h.DB.Exec(`
		INSERT INTO product_inquiries (user_id, product_id, type, quantity, message, status, created_at)
		VALUES (?, ?, ?, ?, ?, 'pending', ?)`,
		userID, productID, inquiryType, quantity, message, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create inquiry"})
		return
	}

	inquiryID, _ := result.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{"data": models.ProductInquiry{
		ID:        inquiryID,
		UserID:    userID,
		ProductID: productID,
		Type:      inquiryType,
		Quantity:  quantity,
		Message:   message,
		Status:    models.InquiryStatusPending,
		CreatedAt: now,
	}})
}
