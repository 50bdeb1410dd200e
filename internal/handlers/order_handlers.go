package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/bizlink/bizlink-golang/internal/models"
	"github.com/bizlink/bizlink-golang/internal/orders"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

//
// --- Order Handlers ---
//

type CreateOrdersInput struct {
	Note *string `json:"note"`
}

// CreateOrders is the handler for POST /v1/orders (cart checkout).
// The cart is partitioned by business and one order is created per business,
// each inside its own transaction. There is deliberately no rollback across
// groups: a failure at group N leaves groups 1..N-1 committed and the cart
// untouched. The cart is cleared only once every group succeeded.
func (h *Handlers) CreateOrders(c *gin.Context) {
	buyerID := currentUserID(c)

	var input CreateOrdersInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 1. --- Load the cart with product prices and owning businesses ---
	rows, err := h.DB.Query(`
		SELECT ci.product_id, ci.quantity, p.price, b.id, b.user_id
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		JOIN businesses b ON p.business_id = b.id
		WHERE ci.user_id = ?
		ORDER BY ci.created_at ASC`, buyerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}
	defer rows.Close()

	var lines []orders.CartLine
	for rows.Next() {
		var line orders.CartLine
		if err := rows.Scan(&line.ProductID, &line.Quantity, &line.UnitPrice,
			&line.BusinessID, &line.SellerID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan cart item"})
			return
		}
		lines = append(lines, line)
	}

	// 2. --- Group into per-business drafts before writing anything ---
	drafts, err := orders.GroupCart(lines)
	if err != nil {
		if errors.Is(err, orders.ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to group cart"})
		return
	}

	// 3. --- Create one order per business, each in its own transaction ---
	now := time.Now()
	createdIDs := make([]int64, 0, len(drafts))

	for _, draft := range drafts {
		orderID, err := h.createOrderFromDraft(buyerID, draft, input.Note, now)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"buyer_id":        buyerID,
				"business_id":     draft.BusinessID,
				"orders_created":  len(createdIDs),
				"orders_expected": len(drafts),
			}).WithError(err).Warn("checkout failed partway; earlier orders remain committed, cart not cleared")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
			return
		}
		createdIDs = append(createdIDs, orderID)
	}

	// 4. --- Clear the whole cart only after every group succeeded ---
	if _, err := h.DB.Exec("DELETE FROM cart_items WHERE user_id = ?", buyerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	// 5. --- Return the created orders with their items ---
	created := make([]models.Order, 0, len(createdIDs))
	for _, id := range createdIDs {
		order, err := h.loadOrder(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load created order"})
			return
		}
		created = append(created, order)
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

// createOrderFromDraft persists one draft order and its items transactionally.
func (h *Handlers) createOrderFromDraft(buyerID int64, draft orders.OrderDraft, note *string, now time.Time) (int64, error) {
	tx, err := h.DB.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO orders (buyer_id, seller_id, business_id, total_amount, status, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, 'pending', ?, ?, ?)`,
		buyerID, draft.SellerID, draft.BusinessID, draft.TotalAmount, note, now, now)
	if err != nil {
		return 0, err
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, item := range draft.Items {
		_, err := tx.Exec(`
			INSERT INTO order_items (order_id, product_id, quantity, unit_price, total_price, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			orderID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice, now)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return orderID, nil
}

type OrderFromQuoteInput struct {
	ProductID int64    `json:"productId" binding:"required"`
	Quantity  int      `json:"quantity"`
	UnitPrice *float64 `json:"unitPrice" binding:"required,gte=0"`
}

// CreateOrderFromQuote is the handler for POST /v1/orders/from-quote
// Creates a single order/item pair with a caller-supplied unit price, used
// when a price was negotiated privately (e.g. in chat) before ordering.
func (h *Handlers) CreateOrderFromQuote(c *gin.Context) {
	buyerID := currentUserID(c)

	var input OrderFromQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	quantity := input.Quantity
	if quantity < 1 {
		quantity = 1
	}

	var businessID, sellerID int64
	err := h.DB.QueryRow(`
		SELECT b.id, b.user_id FROM products p
		JOIN businesses b ON p.business_id = b.id
		WHERE p.id = ?`, input.ProductID).Scan(&businessID, &sellerID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	// The negotiated price overrides the listed one.
	totalAmount := *input.UnitPrice * float64(quantity)
	note := "Order from quote"
	now := time.Now()

	draft := orders.OrderDraft{
		BusinessID:  businessID,
		SellerID:    sellerID,
		TotalAmount: totalAmount,
		Items: []orders.DraftItem{{
			ProductID:  input.ProductID,
			Quantity:   quantity,
			UnitPrice:  *input.UnitPrice,
			TotalPrice: totalAmount,
		}},
	}

	orderID, err := h.createOrderFromDraft(buyerID, draft, &note, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	order, err := h.loadOrder(orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load created order"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": order})
}

const orderColumns = `o.id, o.buyer_id, o.seller_id, o.business_id, o.total_amount, o.status,
	o.note, o.response_note, o.created_at, o.updated_at, b.id, b.name, b.city`

func scanOrder(scanner interface{ Scan(...interface{}) error }) (models.Order, error) {
	var o models.Order
	var biz models.BusinessRef
	err := scanner.Scan(
		&o.ID, &o.BuyerID, &o.SellerID, &o.BusinessID, &o.TotalAmount, &o.Status,
		&o.Note, &o.ResponseNote, &o.CreatedAt, &o.UpdatedAt,
		&biz.ID, &biz.Name, &biz.City)
	if err != nil {
		return o, err
	}
	o.Business = &biz
	return o, nil
}

// loadOrder fetches one order with its items and business reference.
func (h *Handlers) loadOrder(orderID int64) (models.Order, error) {
	row := h.DB.QueryRow("SELECT "+orderColumns+`
		FROM orders o
		JOIN businesses b ON o.business_id = b.id
		WHERE o.id = ?`, orderID)

	order, err := scanOrder(row)
	if err != nil {
		return order, err
	}

	items, err := h.loadOrderItems(orderID)
	if err != nil {
		return order, err
	}
	order.Items = items
	return order, nil
}

func (h *Handlers) loadOrderItems(orderID int64) ([]models.OrderItem, error) {
	rows, err := h.DB.Query(`
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price, oi.total_price,
		       oi.created_at, p.name
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = ?`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
			&item.UnitPrice, &item.TotalPrice, &item.CreatedAt, &item.ProductName); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// listOrders serves both the buyer and seller order lists.
func (h *Handlers) listOrders(c *gin.Context, ownerColumn string) {
	userID := currentUserID(c)

	query := "SELECT " + orderColumns + `
		FROM orders o
		JOIN businesses b ON o.business_id = b.id
		WHERE o.` + ownerColumn + ` = ?`
	args := []interface{}{userID}

	if status := c.Query("status"); status != "" && status != "all" {
		query += " AND o.status = ?"
		args = append(args, status)
	}
	query += " ORDER BY o.created_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	list := []models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order"})
			return
		}
		list = append(list, order)
	}
	rows.Close()

	for i := range list {
		items, err := h.loadOrderItems(list[i].ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
			return
		}
		list[i].Items = items
	}

	c.JSON(http.StatusOK, gin.H{"data": list})
}

// GetMyOrders is the handler for GET /v1/orders, orders where the caller is the buyer.
func (h *Handlers) GetMyOrders(c *gin.Context) {
	h.listOrders(c, "buyer_id")
}

// GetSellerOrders is the handler for GET /v1/seller/orders, orders where the caller is the seller.
func (h *Handlers) GetSellerOrders(c *gin.Context) {
	h.listOrders(c, "seller_id")
}

// GetOrderDetails is the handler for GET /v1/orders/:id (participants only).
func (h *Handlers) GetOrderDetails(c *gin.Context) {
	userID := currentUserID(c)
	orderID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, err := h.loadOrder(orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	if order.BuyerID != userID && order.SellerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

type UpdateOrderStatusInput struct {
	Status       string  `json:"status" binding:"required"`
	ResponseNote *string `json:"responseNote"`
}

// UpdateOrderStatus is the handler for PUT /v1/orders/:id/status
// The transition policy lives in the orders package; this handler only
// resolves the caller's role and persists an allowed move.
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	userID := currentUserID(c)
	orderID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	var input UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 1. --- Load the order and resolve the caller's role ---
	var buyerID, sellerID int64
	var currentStatus string
	err := h.DB.QueryRow("SELECT buyer_id, seller_id, status FROM orders WHERE id = ?",
		orderID).Scan(&buyerID, &sellerID, &currentStatus)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	var role orders.Role
	switch userID {
	case buyerID:
		role = orders.RoleBuyer
	case sellerID:
		role = orders.RoleSeller
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	// 2. --- Check the transition table ---
	if err := orders.Transition(role, orders.Status(currentStatus), orders.Status(input.Status)); err != nil {
		switch {
		case errors.Is(err, orders.ErrBuyerOnlyCancel):
			c.JSON(http.StatusForbidden, gin.H{"error": "Buyers can only cancel orders"})
		case errors.Is(err, orders.ErrBuyerNotPending):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Can only cancel pending orders"})
		case errors.Is(err, orders.ErrSellerCancel):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Sellers cannot cancel, use rejected"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	// 3. --- Persist status and optional response note ---
	_, err = h.DB.Exec(`
		UPDATE orders SET status = ?, response_note = COALESCE(?, response_note), updated_at = ?
		WHERE id = ?`,
		input.Status, input.ResponseNote, time.Now(), orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	order, err := h.loadOrder(orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

type EditOrderItemInput struct {
	ID       int64 `json:"id" binding:"required"`
	Quantity *int  `json:"quantity" binding:"required"`
}

type EditOrderInput struct {
	Note  *string              `json:"note"`
	Items []EditOrderItemInput `json:"items"`
}

// EditOrder is the handler for PATCH /v1/orders/:id
// Buyer-only line-item edits on pending orders. When items are supplied the
// payload is the full surviving set: quantity 0 or omission deletes an item,
// quantity > 0 recomputes its line total from the snapshot unit price. The
// order total is recomputed to match in the same transaction. A nil items
// field leaves the item set alone and only updates the note.
func (h *Handlers) EditOrder(c *gin.Context) {
	userID := currentUserID(c)
	orderID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	var input EditOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 1. --- Load order, check ownership and state ---
	var buyerID int64
	var status string
	err := h.DB.QueryRow("SELECT buyer_id, status FROM orders WHERE id = ?",
		orderID).Scan(&buyerID, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}
	if buyerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	if orders.Status(status) != orders.StatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": orders.ErrNotPending.Error()})
		return
	}

	now := time.Now()

	if input.Items == nil {
		// Note-only update.
		_, err := h.DB.Exec("UPDATE orders SET note = COALESCE(?, note), updated_at = ? WHERE id = ?",
			input.Note, now, orderID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
			return
		}
		order, err := h.loadOrder(orderID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": order})
		return
	}

	// 2. --- Load the current item set ---
	rows, err := h.DB.Query("SELECT id, quantity, unit_price FROM order_items WHERE order_id = ?", orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
		return
	}
	var current []orders.Item
	for rows.Next() {
		var it orders.Item
		if err := rows.Scan(&it.ID, &it.Quantity, &it.UnitPrice); err != nil {
			rows.Close()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order item"})
			return
		}
		current = append(current, it)
	}
	rows.Close()

	changes := make([]orders.Change, 0, len(input.Items))
	for _, item := range input.Items {
		changes = append(changes, orders.Change{ItemID: item.ID, Quantity: *item.Quantity})
	}

	// 3. --- Validate the whole batch, then compute the resulting state ---
	result, err := orders.ApplyEdit(current, changes)
	if err != nil {
		var unknown *orders.UnknownItemError
		var badQty *orders.InvalidQuantityError
		switch {
		case errors.As(err, &unknown), errors.As(err, &badQty):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply edit"})
		}
		return
	}

	// 4. --- Apply updates, deletes and the recomputed total together ---
	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	for _, up := range result.Updates {
		if _, err := tx.Exec("UPDATE order_items SET quantity = ?, total_price = ? WHERE id = ?",
			up.Quantity, up.TotalPrice, up.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order item"})
			return
		}
	}
	for _, id := range result.Deletes {
		if _, err := tx.Exec("DELETE FROM order_items WHERE id = ?", id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove order item"})
			return
		}
	}
	if _, err := tx.Exec(`
		UPDATE orders SET total_amount = ?, note = COALESCE(?, note), updated_at = ?
		WHERE id = ?`,
		result.TotalAmount, input.Note, now, orderID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit edit"})
		return
	}

	order, err := h.loadOrder(orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}
