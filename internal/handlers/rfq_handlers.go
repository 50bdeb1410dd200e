package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/bizlink/bizlink-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

//
// --- RFQ / Quote Handlers ---
//

const rfqColumns = `r.id, r.buyer_id, r.title, r.description, r.industry, r.quantity, r.unit,
	r.budget, r.deadline, r.status, r.created_at, r.updated_at,
	(SELECT COUNT(*) FROM quotes q WHERE q.rfq_id = r.id)`

func scanRFQ(scanner interface{ Scan(...interface{}) error }) (models.RFQ, error) {
	var r models.RFQ
	err := scanner.Scan(
		&r.ID, &r.BuyerID, &r.Title, &r.Description, &r.Industry, &r.Quantity, &r.Unit,
		&r.Budget, &r.Deadline, &r.Status, &r.CreatedAt, &r.UpdatedAt, &r.QuotesCount)
	return r, err
}

// ListRFQs is the handler for GET /v1/rfqs
// Filters: industry, status, buyerId.
func (h *Handlers) ListRFQs(c *gin.Context) {
	where := "WHERE 1=1"
	args := []interface{}{}

	if industry := c.Query("industry"); industry != "" && industry != "all" {
		where += " AND r.industry = ?"
		args = append(args, industry)
	}
	if status := c.Query("status"); status != "" {
		where += " AND r.status = ?"
		args = append(args, status)
	}
	if buyerID := c.Query("buyerId"); buyerID != "" {
		where += " AND r.buyer_id = ?"
		args = append(args, buyerID)
	}

	rows, err := h.DB.Query("SELECT "+rfqColumns+" FROM rfqs r "+where+" ORDER BY r.created_at DESC", args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch RFQs"})
		return
	}
	defer rows.Close()

	rfqs := []models.RFQ{}
	for rows.Next() {
		r, err := scanRFQ(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan RFQ"})
			return
		}
		rfqs = append(rfqs, r)
	}

	c.JSON(http.StatusOK, gin.H{"data": rfqs})
}

type CreateRFQInput struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description" binding:"required"`
	Industry    string     `json:"industry" binding:"required"`
	Quantity    int        `json:"quantity" binding:"required,gt=0"`
	Unit        *string    `json:"unit"`
	Budget      *float64   `json:"budget"`
	Deadline    *time.Time `json:"deadline"`
}

// CreateRFQ is the handler for POST /v1/rfqs
func (h *Handlers) CreateRFQ(c *gin.Context) {
	buyerID := currentUserID(c)

	var input CreateRFQInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	unit := "pieces"
	if input.Unit != nil && *input.Unit != "" {
		unit = *input.Unit
	}

	now := time.Now()
	result, err := h.DB.Exec(`
		INSERT INTO rfqs (buyer_id, title, description, industry, quantity, unit, budget, deadline,
		                  status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'open', ?, ?)`,
		buyerID, input.Title, input.Description, input.Industry, input.Quantity, unit,
		input.Budget, input.Deadline, now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create RFQ"})
		return
	}

	rfqID, _ := result.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{"data": models.RFQ{
		ID:          rfqID,
		BuyerID:     buyerID,
		Title:       input.Title,
		Description: input.Description,
		Industry:    input.Industry,
		Quantity:    input.Quantity,
		Unit:        unit,
		Budget:      input.Budget,
		Deadline:    input.Deadline,
		Status:      models.RFQStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}})
}

// GetRFQ is the handler for GET /v1/rfqs/:id
func (h *Handlers) GetRFQ(c *gin.Context) {
	rfqID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RFQ id"})
		return
	}

	r, err := scanRFQ(h.DB.QueryRow("SELECT "+rfqColumns+" FROM rfqs r WHERE r.id = ?", rfqID))
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "RFQ not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch RFQ"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": r})
}

// rfqBuyer returns the owning buyer of an RFQ, or sql.ErrNoRows.
func (h *Handlers) rfqBuyer(rfqID int64) (int64, error) {
	var buyerID int64
	err := h.DB.QueryRow("SELECT buyer_id FROM rfqs WHERE id = ?", rfqID).Scan(&buyerID)
	return buyerID, err
}

type UpdateRFQInput struct {
	Status *string `json:"status"`
}

// UpdateRFQ is the handler for PUT /v1/rfqs/:id (buyer only; status changes only).
func (h *Handlers) UpdateRFQ(c *gin.Context) {
	userID := currentUserID(c)
	rfqID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RFQ id"})
		return
	}

	buyerID, err := h.rfqBuyer(rfqID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "RFQ not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch RFQ"})
		return
	}
	if buyerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	var input UpdateRFQInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Status != nil {
		switch *input.Status {
		case models.RFQStatusOpen, models.RFQStatusQuoted, models.RFQStatusClosed:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
	}

	_, err = h.DB.Exec("UPDATE rfqs SET status = COALESCE(?, status), updated_at = ? WHERE id = ?",
		input.Status, time.Now(), rfqID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update RFQ"})
		return
	}

	h.GetRFQ(c)
}

// DeleteRFQ is the handler for DELETE /v1/rfqs/:id (buyer only).
func (h *Handlers) DeleteRFQ(c *gin.Context) {
	userID := currentUserID(c)
	rfqID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RFQ id"})
		return
	}

	buyerID, err := h.rfqBuyer(rfqID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "RFQ not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch RFQ"})
		return
	}
	if buyerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	if _, err := h.DB.Exec("DELETE FROM rfqs WHERE id = ?", rfqID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete RFQ"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"success": true}})
}

const quoteColumns = `q.id, q.rfq_id, q.supplier_id, q.business_id, q.unit_price, q.total_price,
	q.moq, q.lead_time, q.notes, q.valid_until, q.status, q.created_at, b.id, b.name, b.city`

func scanQuote(scanner interface{ Scan(...interface{}) error }) (models.Quote, error) {
	var q models.Quote
	var biz models.BusinessRef
	err := scanner.Scan(
		&q.ID, &q.RFQID, &q.SupplierID, &q.BusinessID, &q.UnitPrice, &q.TotalPrice,
		&q.MOQ, &q.LeadTime, &q.Notes, &q.ValidUntil, &q.Status, &q.CreatedAt,
		&biz.ID, &biz.Name, &biz.City)
	if err != nil {
		return q, err
	}
	q.Business = &biz
	return q, nil
}

// ListQuotes is the handler for GET /v1/rfqs/:id/quotes
func (h *Handlers) ListQuotes(c *gin.Context) {
	rfqID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RFQ id"})
		return
	}

	rows, err := h.DB.Query("SELECT "+quoteColumns+`
		FROM quotes q
		JOIN businesses b ON q.business_id = b.id
		WHERE q.rfq_id = ?
		ORDER BY q.created_at DESC`, rfqID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quotes"})
		return
	}
	defer rows.Close()

	quotes := []models.Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan quote"})
			return
		}
		quotes = append(quotes, q)
	}

	c.JSON(http.StatusOK, gin.H{"data": quotes})
}

type SubmitQuoteInput struct {
	BusinessID int64     `json:"businessId" binding:"required"`
	UnitPrice  *float64  `json:"unitPrice" binding:"required,gt=0"`
	TotalPrice *float64  `json:"totalPrice" binding:"required,gt=0"`
	MOQ        *int      `json:"moq"`
	LeadTime   string    `json:"leadTime" binding:"required"`
	Notes      *string   `json:"notes"`
	ValidUntil time.Time `json:"validUntil" binding:"required"`
}

// SubmitQuote is the handler for POST /v1/rfqs/:id/quotes (business owner only).
// Submitting a quote also bumps an open RFQ to quoted. The bump is
// fire-and-forget: if the RFQ already left open, the quote still lands.
func (h *Handlers) SubmitQuote(c *gin.Context) {
	userID := currentUserID(c)
	rfqID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RFQ id"})
		return
	}

	var input SubmitQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.rfqBuyer(rfqID); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "RFQ not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch RFQ"})
		return
	}

	var ownerID int64
	err := h.DB.QueryRow("SELECT user_id FROM businesses WHERE id = ?", input.BusinessID).Scan(&ownerID)
	if err != nil || ownerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	moq := 1
	if input.MOQ != nil && *input.MOQ > 0 {
		moq = *input.MOQ
	}

	now := time.Now()
	result, err := h.DB.Exec(`
		INSERT INTO quotes (rfq_id, supplier_id, business_id, unit_price, total_price, moq,
		                    lead_time, notes, valid_until, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending', ?)`,
		rfqID, userID, input.BusinessID, *input.UnitPrice, *input.TotalPrice, moq,
		input.LeadTime, input.Notes, input.ValidUntil, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit quote"})
		return
	}

	// Best-effort open→quoted bump; the WHERE clause makes it a no-op for
	// RFQs in any other state and failures are only logged.
	if _, err := h.DB.Exec("UPDATE rfqs SET status = 'quoted', updated_at = ? WHERE id = ? AND status = 'open'",
		now, rfqID); err != nil {
		logrus.WithField("rfq_id", rfqID).WithError(err).Warn("rfq status bump failed, quote kept")
	}

	quoteID, _ := result.LastInsertId()
	q, err := scanQuote(h.DB.QueryRow("SELECT "+quoteColumns+`
		FROM quotes q
		JOIN businesses b ON q.business_id = b.id
		WHERE q.id = ?`, quoteID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load quote"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": q})
}

type UpdateQuoteInput struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
}

// UpdateQuoteStatus is the handler for PUT /v1/quotes/:id (RFQ buyer only).
// Accepting a quote closes its parent RFQ; sibling quotes are deliberately
// left untouched. Rejecting changes only the quote itself.
func (h *Handlers) UpdateQuoteStatus(c *gin.Context) {
	userID := currentUserID(c)
	quoteID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote id"})
		return
	}

	var input UpdateQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	var rfqID, buyerID int64
	err := h.DB.QueryRow(`
		SELECT q.rfq_id, r.buyer_id FROM quotes q
		JOIN rfqs r ON q.rfq_id = r.id
		WHERE q.id = ?`, quoteID).Scan(&rfqID, &buyerID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quote"})
		return
	}
	if buyerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	now := time.Now()
	if _, err := h.DB.Exec("UPDATE quotes SET status = ? WHERE id = ?", input.Status, quoteID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update quote"})
		return
	}

	// Acceptance closes the RFQ for good; there is no reopening.
	if input.Status == models.QuoteStatusAccepted {
		if _, err := h.DB.Exec("UPDATE rfqs SET status = 'closed', updated_at = ? WHERE id = ?",
			now, rfqID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close RFQ"})
			return
		}
	}

	q, err := scanQuote(h.DB.QueryRow("SELECT "+quoteColumns+`
		FROM quotes q
		JOIN businesses b ON q.business_id = b.id
		WHERE q.id = ?`, quoteID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load quote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": q})
}
