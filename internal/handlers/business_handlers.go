package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/bizlink/bizlink-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
)

//
// --- Business Handlers ---
//

// businessTags decodes the nullable tags column into the response slice.
func businessTags(raw *string) []string {
	if raw == nil {
		return []string{}
	}
	return jsonList(*raw)
}

// ListBusinesses is the handler for GET /v1/businesses
// Filters: city, category, search, userId; paging: limit, offset.
func (h *Handlers) ListBusinesses(c *gin.Context) {
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

	if city := c.Query("city"); city != "" {
		where += " AND b.city LIKE ?"
		args = append(args, "%"+city+"%")
	}
	if category := c.Query("category"); category != "" && category != "all" {
		where += " AND b.category = ?"
		args = append(args, category)
	}
	if userID := c.Query("userId"); userID != "" {
		where += " AND b.user_id = ?"
		args = append(args, userID)
	}
	if search := c.Query("search"); search != "" {
		where += " AND (b.name LIKE ? OR b.category LIKE ? OR b.description LIKE ?)"
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern, pattern)
	}

	var total int
	if err := h.DB.QueryRow("SELECT COUNT(*) FROM businesses b "+where, args...).Scan(&total); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count businesses"})
		return
	}

	query := `
		SELECT b.id, b.user_id, b.name, b.slug, b.category, b.description, b.city, b.district,
		       b.company_type, b.industry, b.avatar_url, b.cover_image_url, b.tags, b.is_verified,
		       b.created_at, b.updated_at,
		       (SELECT COUNT(*) FROM follows f WHERE f.business_id = b.id) AS follower_count,
		       (SELECT COUNT(*) FROM products p WHERE p.business_id = b.id) AS product_count
		FROM businesses b ` + where + `
		ORDER BY b.created_at DESC
		LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch businesses"})
		return
	}
	defer rows.Close()

	businesses := []models.Business{}
	for rows.Next() {
		var b models.Business
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.Name, &b.Slug, &b.Category, &b.Description, &b.City, &b.District,
			&b.CompanyType, &b.Industry, &b.AvatarURL, &b.CoverImageURL, &b.TagsRaw, &b.IsVerified,
			&b.CreatedAt, &b.UpdatedAt, &b.FollowerCount, &b.ProductCount,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan business"})
			return
		}
		b.Tags = businessTags(b.TagsRaw)
		businesses = append(businesses, b)
	}

	c.JSON(http.StatusOK, gin.H{"data": businesses, "total": total, "limit": limit, "offset": offset})
}

type CreateBusinessInput struct {
	Name        string  `json:"name" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	City        string  `json:"city" binding:"required"`
	Description *string `json:"description"`
	District    *string `json:"district"`
	CompanyType *string `json:"companyType"`
	Industry    *string `json:"industry"`
}

// CreateBusiness is the handler for POST /v1/businesses
// One business per user; a second attempt conflicts.
func (h *Handlers) CreateBusiness(c *gin.Context) {
	userID := currentUserID(c)

	var input CreateBusinessInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existingID int64
	err := h.DB.QueryRow("SELECT id FROM businesses WHERE user_id = ?", userID).Scan(&existingID)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "You already have a business profile"})
		return
	}
	if err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing business"})
		return
	}

	now := time.Now()
	handle := slug.Make(input.Name)

	result, err := h.DB.Exec(`
		INSERT INTO businesses (user_id, name, slug, category, description, city, district,
		                        company_type, industry, is_verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, false, ?, ?)`,
		userID, input.Name, handle, input.Category, input.Description, input.City,
		input.District, input.CompanyType, input.Industry, now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create business"})
		return
	}

	businessID, err := result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create business"})
		return
	}

	business := models.Business{
		ID:          businessID,
		UserID:      userID,
		Name:        input.Name,
		Slug:        handle,
		Category:    input.Category,
		Description: input.Description,
		City:        input.City,
		District:    input.District,
		CompanyType: input.CompanyType,
		Industry:    input.Industry,
		Tags:        []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	c.JSON(http.StatusCreated, gin.H{"data": business})
}

// GetBusiness is the handler for GET /v1/businesses/:id
func (h *Handlers) GetBusiness(c *gin.Context) {
	businessID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid business id"})
		return
	}

	var b models.Business
	err := h.DB.QueryRow(`
		SELECT b.id, b.user_id, b.name, b.slug, b.category, b.description, b.city, b.district,
		       b.company_type, b.industry, b.avatar_url, b.cover_image_url, b.tags, b.is_verified,
		       b.created_at, b.updated_at,
		       (SELECT COUNT(*) FROM follows f WHERE f.business_id = b.id),
		       (SELECT COUNT(*) FROM products p WHERE p.business_id = b.id)
		FROM businesses b WHERE b.id = ?`, businessID).Scan(
		&b.ID, &b.UserID, &b.Name, &b.Slug, &b.Category, &b.Description, &b.City, &b.District,
		&b.CompanyType, &b.Industry, &b.AvatarURL, &b.CoverImageURL, &b.TagsRaw, &b.IsVerified,
		&b.CreatedAt, &b.UpdatedAt, &b.FollowerCount, &b.ProductCount)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch business"})
		return
	}
	b.Tags = businessTags(b.TagsRaw)

	c.JSON(http.StatusOK, gin.H{"data": b})
}

// BusinessPatch is the typed patch for PUT /v1/businesses/:id.
type BusinessPatch struct {
	Name          *string  `json:"name"`
	Category      *string  `json:"category"`
	Description   *string  `json:"description"`
	City          *string  `json:"city"`
	District      *string  `json:"district"`
	AvatarURL     *string  `json:"avatarUrl"`
	CoverImageURL *string  `json:"coverImageUrl"`
	CompanyType   *string  `json:"companyType"`
	Industry      *string  `json:"industry"`
	Tags          []string `json:"tags"`
}

// UpdateBusiness is the handler for PUT /v1/businesses/:id (owner only).
func (h *Handlers) UpdateBusiness(c *gin.Context) {
	userID := currentUserID(c)
	businessID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid business id"})
		return
	}

	var ownerID int64
	err := h.DB.QueryRow("SELECT user_id FROM businesses WHERE id = ?", businessID).Scan(&ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch business"})
		return
	}
	if ownerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	var patch BusinessPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Renaming refreshes the slug alongside the name.
	var newSlug *string
	if patch.Name != nil {
		s := slug.Make(*patch.Name)
		newSlug = &s
	}

	// An absent tags key leaves the column alone; an empty array clears it.
	var newTags *string
	if patch.Tags != nil {
		encoded := jsonListRaw(patch.Tags)
		newTags = &encoded
	}

	_, err = h.DB.Exec(`
		UPDATE businesses SET
			name            = COALESCE(?, name),
			slug            = COALESCE(?, slug),
			category        = COALESCE(?, category),
			description     = COALESCE(?, description),
			city            = COALESCE(?, city),
			district        = COALESCE(?, district),
			avatar_url      = COALESCE(?, avatar_url),
			cover_image_url = COALESCE(?, cover_image_url),
			company_type    = COALESCE(?, company_type),
			industry        = COALESCE(?, industry),
			tags            = COALESCE(?, tags),
			updated_at      = ?
		WHERE id = ?`,
		patch.Name, newSlug, patch.Category, patch.Description, patch.City, patch.District,
		patch.AvatarURL, patch.CoverImageURL, patch.CompanyType, patch.Industry, newTags,
		time.Now(), businessID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update business"})
		return
	}

	h.GetBusiness(c)
}

// DeleteBusiness is the handler for DELETE /v1/businesses/:id (owner only).
func (h *Handlers) DeleteBusiness(c *gin.Context) {
	userID := currentUserID(c)
	businessID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid business id"})
		return
	}

	var ownerID int64
	err := h.DB.QueryRow("SELECT user_id FROM businesses WHERE id = ?", businessID).Scan(&ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch business"})
		return
	}
	if ownerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	if _, err := h.DB.Exec("DELETE FROM businesses WHERE id = ?", businessID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete business"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"success": true}})
}
