package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quoteRowColumns = []string{
	"id", "rfq_id", "supplier_id", "business_id", "unit_price", "total_price",
	"moq", "lead_time", "notes", "valid_until", "status", "created_at", "b_id", "b_name", "b_city",
}

func quoteRow(quoteID, rfqID int64, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(quoteRowColumns).
		AddRow(quoteID, rfqID, testSellerID, 3, 8.5, 850.0,
			100, "2 weeks", nil, now.AddDate(0, 1, 0), status, now, 3, "Acme Supplies", "Kuala Lumpur")
}

func TestSubmitQuoteBumpsOpenRFQ(t *testing.T) {
	h, mock := newMockHandlers(t)

	mock.ExpectQuery("SELECT buyer_id FROM rfqs").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"buyer_id"}).AddRow(testBuyerID))
	mock.ExpectQuery("SELECT user_id FROM businesses").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(testSellerID))
	mock.ExpectExec("INSERT INTO quotes").
		WithArgs(int64(5), testSellerID, int64(3), 8.5, 850.0, 100, "2 weeks", nil,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("UPDATE rfqs SET status = 'quoted'").
		WithArgs(sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM quotes q JOIN businesses b").
		WithArgs(int64(42)).
		WillReturnRows(quoteRow(42, 5, "pending"))

	w := serve(testSellerID, http.MethodPost, "/rfqs/5/quotes",
		`{"businessId":3,"unitPrice":8.5,"totalPrice":850,"moq":100,"leadTime":"2 weeks","validUntil":"2026-10-01T00:00:00Z"}`,
		func(g *gin.RouterGroup) { g.POST("/rfqs/:id/quotes", h.SubmitQuote) })

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitQuoteNotBusinessOwner(t *testing.T) {
	h, mock := newMockHandlers(t)

	mock.ExpectQuery("SELECT buyer_id FROM rfqs").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"buyer_id"}).AddRow(testBuyerID))
	mock.ExpectQuery("SELECT user_id FROM businesses").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(99)))

	w := serve(testSellerID, http.MethodPost, "/rfqs/5/quotes",
		`{"businessId":3,"unitPrice":8.5,"totalPrice":850,"leadTime":"2 weeks","validUntil":"2026-10-01T00:00:00Z"}`,
		func(g *gin.RouterGroup) { g.POST("/rfqs/:id/quotes", h.SubmitQuote) })

	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func quoteStatusRoute(h *Handlers) func(*gin.RouterGroup) {
	return func(g *gin.RouterGroup) { g.PUT("/quotes/:id", h.UpdateQuoteStatus) }
}

func expectQuoteOwner(mock sqlmock.Sqlmock, quoteID, rfqID int64) {
	mock.ExpectQuery("SELECT q.rfq_id, r.buyer_id FROM quotes q").
		WithArgs(quoteID).
		WillReturnRows(sqlmock.NewRows([]string{"rfq_id", "buyer_id"}).AddRow(rfqID, testBuyerID))
}

func TestAcceptQuoteClosesRFQ(t *testing.T) {
	h, mock := newMockHandlers(t)

	expectQuoteOwner(mock, 42, 5)
	mock.ExpectExec("UPDATE quotes SET status").
		WithArgs("accepted", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Only the parent RFQ changes; no sibling quote is touched.
	mock.ExpectExec("UPDATE rfqs SET status = 'closed'").
		WithArgs(sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM quotes q JOIN businesses b").
		WithArgs(int64(42)).
		WillReturnRows(quoteRow(42, 5, "accepted"))

	w := serve(testBuyerID, http.MethodPut, "/quotes/42", `{"status":"accepted"}`, quoteStatusRoute(h))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"accepted"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectQuoteLeavesRFQ(t *testing.T) {
	h, mock := newMockHandlers(t)

	expectQuoteOwner(mock, 42, 5)
	mock.ExpectExec("UPDATE quotes SET status").
		WithArgs("rejected", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM quotes q JOIN businesses b").
		WithArgs(int64(42)).
		WillReturnRows(quoteRow(42, 5, "rejected"))

	w := serve(testBuyerID, http.MethodPut, "/quotes/42", `{"status":"rejected"}`, quoteStatusRoute(h))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateQuoteStatusNotRFQBuyer(t *testing.T) {
	h, mock := newMockHandlers(t)
	expectQuoteOwner(mock, 42, 5)

	w := serve(testSellerID, http.MethodPut, "/quotes/42", `{"status":"accepted"}`, quoteStatusRoute(h))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateQuoteStatusRejectsBadValue(t *testing.T) {
	h, _ := newMockHandlers(t)

	w := serve(testBuyerID, http.MethodPut, "/quotes/42", `{"status":"maybe"}`, quoteStatusRoute(h))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid status")
}
