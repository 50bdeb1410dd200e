package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBuyerID  int64 = 1
	testSellerID int64 = 2
)

func statusRoute(h *Handlers) func(*gin.RouterGroup) {
	return func(g *gin.RouterGroup) { g.PUT("/orders/:id/status", h.UpdateOrderStatus) }
}

func expectOrderRoles(mock sqlmock.Sqlmock, orderID int64, status string) {
	mock.ExpectQuery("SELECT buyer_id, seller_id, status FROM orders").
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"buyer_id", "seller_id", "status"}).
			AddRow(testBuyerID, testSellerID, status))
}

func TestUpdateOrderStatusSellerConfirms(t *testing.T) {
	h, mock := newMockHandlers(t)

	expectOrderRoles(mock, 7, "pending")
	mock.ExpectExec("UPDATE orders SET status").
		WithArgs("confirmed", nil, sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectLoadOrder(mock, 7, "confirmed", 100)

	w := serve(testSellerID, http.MethodPut, "/orders/7/status", `{"status":"confirmed"}`, statusRoute(h))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"confirmed"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatusSellerRejectsWithNote(t *testing.T) {
	h, mock := newMockHandlers(t)

	expectOrderRoles(mock, 7, "pending")
	mock.ExpectExec("UPDATE orders SET status").
		WithArgs("rejected", "out of stock", sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectLoadOrder(mock, 7, "rejected", 100)

	w := serve(testSellerID, http.MethodPut, "/orders/7/status",
		`{"status":"rejected","responseNote":"out of stock"}`, statusRoute(h))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatusBuyerCancelsPending(t *testing.T) {
	h, mock := newMockHandlers(t)

	expectOrderRoles(mock, 7, "pending")
	mock.ExpectExec("UPDATE orders SET status").
		WithArgs("cancelled", nil, sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectLoadOrder(mock, 7, "cancelled", 100)

	w := serve(testBuyerID, http.MethodPut, "/orders/7/status", `{"status":"cancelled"}`, statusRoute(h))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatusBuyerCannotConfirm(t *testing.T) {
	h, mock := newMockHandlers(t)
	expectOrderRoles(mock, 7, "pending")

	w := serve(testBuyerID, http.MethodPut, "/orders/7/status", `{"status":"confirmed"}`, statusRoute(h))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Buyers can only cancel orders")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatusBuyerCancelTooLate(t *testing.T) {
	h, mock := newMockHandlers(t)
	expectOrderRoles(mock, 7, "shipped")

	w := serve(testBuyerID, http.MethodPut, "/orders/7/status", `{"status":"cancelled"}`, statusRoute(h))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Can only cancel pending orders")
}

func TestUpdateOrderStatusSellerCannotCancel(t *testing.T) {
	h, mock := newMockHandlers(t)
	expectOrderRoles(mock, 7, "pending")

	w := serve(testSellerID, http.MethodPut, "/orders/7/status", `{"status":"cancelled"}`, statusRoute(h))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Sellers cannot cancel, use rejected")
}

func TestUpdateOrderStatusInvalidTransition(t *testing.T) {
	h, mock := newMockHandlers(t)
	expectOrderRoles(mock, 7, "delivered")

	w := serve(testSellerID, http.MethodPut, "/orders/7/status", `{"status":"shipped"}`, statusRoute(h))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot transition from delivered to shipped")
}

func TestUpdateOrderStatusStranger(t *testing.T) {
	h, mock := newMockHandlers(t)
	expectOrderRoles(mock, 7, "pending")

	w := serve(99, http.MethodPut, "/orders/7/status", `{"status":"confirmed"}`, statusRoute(h))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Forbidden")
}

func checkoutRoute(h *Handlers) func(*gin.RouterGroup) {
	return func(g *gin.RouterGroup) { g.POST("/orders", h.CreateOrders) }
}

var cartRowColumns = []string{"product_id", "quantity", "price", "b_id", "b_user_id"}

func TestCreateOrdersGroupsByBusiness(t *testing.T) {
	h, mock := newMockHandlers(t)

	// Items for business 3 bracket the business 4 item; grouping keeps them together.
	mock.ExpectQuery("FROM cart_items ci").
		WithArgs(testBuyerID).
		WillReturnRows(sqlmock.NewRows(cartRowColumns).
			AddRow(10, 2, 10.0, 3, testSellerID).
			AddRow(11, 1, 25.0, 4, int64(5)).
			AddRow(12, 3, 5.0, 3, testSellerID))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(testBuyerID, testSellerID, int64(3), 35.0, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(101, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(101), int64(10), 2, 10.0, 20.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(101), int64(12), 3, 5.0, 15.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(testBuyerID, int64(5), int64(4), 25.0, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(102, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(102), int64(11), 1, 25.0, 25.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs(testBuyerID).
		WillReturnResult(sqlmock.NewResult(0, 3))

	expectLoadOrder(mock, 101, "pending", 35)
	expectLoadOrder(mock, 102, "pending", 25)

	w := serve(testBuyerID, http.MethodPost, "/orders", "", checkoutRoute(h))

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrdersEmptyCart(t *testing.T) {
	h, mock := newMockHandlers(t)

	mock.ExpectQuery("FROM cart_items ci").
		WithArgs(testBuyerID).
		WillReturnRows(sqlmock.NewRows(cartRowColumns))

	w := serve(testBuyerID, http.MethodPost, "/orders", "", checkoutRoute(h))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Cart is empty")
}

func TestCreateOrdersPartialFailureKeepsCart(t *testing.T) {
	h, mock := newMockHandlers(t)

	mock.ExpectQuery("FROM cart_items ci").
		WithArgs(testBuyerID).
		WillReturnRows(sqlmock.NewRows(cartRowColumns).
			AddRow(10, 1, 10.0, 3, testSellerID).
			AddRow(11, 1, 25.0, 4, int64(5)))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(testBuyerID, testSellerID, int64(3), 10.0, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(101, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(101), int64(10), 1, 10.0, 10.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(testBuyerID, int64(5), int64(4), 25.0, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("connection lost"))
	mock.ExpectRollback()

	w := serve(testBuyerID, http.MethodPost, "/orders", "", checkoutRoute(h))

	// First order stays committed and the cart is not cleared.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderFromQuote(t *testing.T) {
	h, mock := newMockHandlers(t)

	mock.ExpectQuery("FROM products p JOIN businesses b").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(3, testSellerID))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(testBuyerID, testSellerID, int64(3), 17.0, "Order from quote", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(101, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(101), int64(10), 2, 8.5, 17.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	expectLoadOrder(mock, 101, "pending", 17)

	w := serve(testBuyerID, http.MethodPost, "/orders/from-quote",
		`{"productId":10,"quantity":2,"unitPrice":8.5}`,
		func(g *gin.RouterGroup) { g.POST("/orders/from-quote", h.CreateOrderFromQuote) })

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func editRoute(h *Handlers) func(*gin.RouterGroup) {
	return func(g *gin.RouterGroup) { g.PATCH("/orders/:id", h.EditOrder) }
}

func expectEditTarget(mock sqlmock.Sqlmock, orderID int64, status string) {
	mock.ExpectQuery("SELECT buyer_id, status FROM orders").
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"buyer_id", "status"}).AddRow(testBuyerID, status))
}

func TestEditOrderRecomputesTotal(t *testing.T) {
	h, mock := newMockHandlers(t)

	expectEditTarget(mock, 7, "pending")
	mock.ExpectQuery("SELECT id, quantity, unit_price FROM order_items").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "quantity", "unit_price"}).
			AddRow(1, 2, 10.0).
			AddRow(2, 1, 5.0))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE order_items SET quantity").
		WithArgs(3, 30.0, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM order_items").
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE orders SET total_amount").
		WithArgs(30.0, nil, sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	expectLoadOrder(mock, 7, "pending", 30)

	w := serve(testBuyerID, http.MethodPatch, "/orders/7",
		`{"items":[{"id":1,"quantity":3},{"id":2,"quantity":0}]}`, editRoute(h))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalAmount":30`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditOrderNoteOnly(t *testing.T) {
	h, mock := newMockHandlers(t)

	expectEditTarget(mock, 7, "pending")
	mock.ExpectExec("UPDATE orders SET note").
		WithArgs("please ship this week", sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectLoadOrder(mock, 7, "pending", 100)

	w := serve(testBuyerID, http.MethodPatch, "/orders/7", `{"note":"please ship this week"}`, editRoute(h))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditOrderUnknownItem(t *testing.T) {
	h, mock := newMockHandlers(t)

	expectEditTarget(mock, 7, "pending")
	mock.ExpectQuery("SELECT id, quantity, unit_price FROM order_items").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "quantity", "unit_price"}).AddRow(1, 2, 10.0))

	w := serve(testBuyerID, http.MethodPatch, "/orders/7",
		`{"items":[{"id":99,"quantity":1}]}`, editRoute(h))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "item 99 does not belong to this order")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditOrderNotPending(t *testing.T) {
	h, mock := newMockHandlers(t)
	expectEditTarget(mock, 7, "confirmed")

	w := serve(testBuyerID, http.MethodPatch, "/orders/7", `{"note":"too late"}`, editRoute(h))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "only pending orders can be edited")
}

func TestEditOrderSellerForbidden(t *testing.T) {
	h, mock := newMockHandlers(t)
	expectEditTarget(mock, 7, "pending")

	w := serve(testSellerID, http.MethodPatch, "/orders/7", `{"note":"not yours"}`, editRoute(h))

	assert.Equal(t, http.StatusForbidden, w.Code)
}
