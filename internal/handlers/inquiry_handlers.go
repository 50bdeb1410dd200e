package handlers

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/bizlink/bizlink-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Seller Inquiry Handlers ---
//

// InquiryDetail joins the inquiry with its product and buyer for the seller view.
type InquiryDetail struct {
	models.ProductInquiry
	ProductName  string  `json:"productName"`
	ProductPrice float64 `json:"productPrice"`
	BuyerName    string  `json:"buyerName"`
	BuyerEmail   string  `json:"buyerEmail"`
}

// GetSellerInquiries is the handler for GET /v1/seller/inquiries
// Lists quote/order requests against the caller's business.
// Filters: type=quote|order|all, status=pending|confirmed|rejected|all.
func (h *Handlers) GetSellerInquiries(c *gin.Context) {
	userID := currentUserID(c)

	var businessID int64
	err := h.DB.QueryRow("SELECT id FROM businesses WHERE user_id = ?", userID).Scan(&businessID)
	if err != nil {
		if err == sql.ErrNoRows {
			// No business yet means no inquiries, not an error.
			c.JSON(http.StatusOK, gin.H{"data": []InquiryDetail{}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch business"})
		return
	}

	query := `
		SELECT i.id, i.user_id, i.product_id, i.type, i.quantity, i.message, i.status,
		       i.response_price, i.response_message, i.responded_at, i.created_at,
		       p.name, p.price, u.full_name, u.email
		FROM product_inquiries i
		JOIN products p ON i.product_id = p.id
		JOIN users u ON i.user_id = u.id
		WHERE p.business_id = ?`
	args := []interface{}{businessID}

	if t := c.Query("type"); t != "" && t != "all" {
		query += " AND i.type = ?"
		args = append(args, t)
	}
	if status := c.Query("status"); status != "" && status != "all" {
		query += " AND i.status = ?"
		args = append(args, status)
	}
	query += " ORDER BY i.created_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inquiries"})
		return
	}
	defer rows.Close()

	inquiries := []InquiryDetail{}
	for rows.Next() {
		var d InquiryDetail
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.ProductID, &d.Type, &d.Quantity, &d.Message, &d.Status,
			&d.ResponsePrice, &d.ResponseMessage, &d.RespondedAt, &d.CreatedAt,
			&d.ProductName, &d.ProductPrice, &d.BuyerName, &d.BuyerEmail,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan inquiry"})
			return
		}
		inquiries = append(inquiries, d)
	}

	c.JSON(http.StatusOK, gin.H{"data": inquiries})
}

type RespondInquiryInput struct {
	Status          string   `json:"status" binding:"required,oneof=pending confirmed rejected"`
	ResponsePrice   *float64 `json:"responsePrice"`
	ResponseMessage *string  `json:"responseMessage"`
}

// RespondToInquiry is the handler for PATCH /v1/seller/inquiries/:id
// Confirm or reject an inquiry. The response price, message and timestamp are
// recorded only on confirmation.
func (h *Handlers) RespondToInquiry(c *gin.Context) {
	userID := currentUserID(c)
	inquiryID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid inquiry id"})
		return
	}

	var input RespondInquiryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of: pending, confirmed, rejected"})
		return
	}

	var ownerID int64
	err := h.DB.QueryRow(`
		SELECT b.user_id FROM product_inquiries i
		JOIN products p ON i.product_id = p.id
		JOIN businesses b ON p.business_id = b.id
		WHERE i.id = ?`, inquiryID).Scan(&ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inquiry"})
		return
	}
	if ownerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	var responsePrice *float64
	var responseMessage *string
	var respondedAt *time.Time

	if input.Status == models.InquiryStatusConfirmed {
		now := time.Now()
		respondedAt = &now
		if input.ResponsePrice != nil && *input.ResponsePrice >= 0 {
			responsePrice = input.ResponsePrice
		}
		if input.ResponseMessage != nil {
			if trimmed := strings.TrimSpace(*input.ResponseMessage); trimmed != "" {
				responseMessage = &trimmed
			}
		}
	}

	_, err = h.DB.Exec(`
		UPDATE product_inquiries
		SET status = ?, response_price = ?, response_message = ?, responded_at = ?
		WHERE id = ?`,
		input.Status, responsePrice, responseMessage, respondedAt, inquiryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update inquiry"})
		return
	}

	var d InquiryDetail
	err = h.DB.QueryRow(`
		SELECT i.id, i.user_id, i.product_id, i.type, i.quantity, i.message, i.status,
		       i.response_price, i.response_message, i.responded_at, i.created_at,
		       p.name, p.price, u.full_name, u.email
		FROM product_inquiries i
		JOIN products p ON i.product_id = p.id
		JOIN users u ON i.user_id = u.id
		WHERE i.id = ?`, inquiryID).Scan(
		&d.ID, &d.UserID, &d.ProductID, &d.Type, &d.Quantity, &d.Message, &d.Status,
		&d.ResponsePrice, &d.ResponseMessage, &d.RespondedAt, &d.CreatedAt,
		&d.ProductName, &d.ProductPrice, &d.BuyerName, &d.BuyerEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load inquiry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": d})
}
