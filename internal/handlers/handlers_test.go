package handlers

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newMockHandlers(t *testing.T) (*Handlers, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Handlers{DB: db}, mock
}

// serve runs a single request through a throwaway router that authenticates
// every request as userID.
func serve(userID int64, method, path, body string, register func(*gin.RouterGroup)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/", func(c *gin.Context) { c.Set("userID", userID) })
	register(group)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var orderRowColumns = []string{
	"id", "buyer_id", "seller_id", "business_id", "total_amount", "status",
	"note", "response_note", "created_at", "updated_at", "b_id", "b_name", "b_city",
}

// expectLoadOrder queues the order+items reload that order handlers finish with.
func expectLoadOrder(mock sqlmock.Sqlmock, orderID int64, status string, total float64) {
	now := time.Now()
	mock.ExpectQuery("FROM orders o JOIN businesses b").
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows(orderRowColumns).
			AddRow(orderID, 1, 2, 3, total, status, nil, nil, now, now, 3, "Acme Supplies", "Kuala Lumpur"))
	mock.ExpectQuery("FROM order_items oi").
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "order_id", "product_id", "quantity", "unit_price", "total_price", "created_at", "name",
		}))
}
