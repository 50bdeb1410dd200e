package handlers

import (
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

//
// --- Seller Analytics Handlers ---
//

type AnalyticsStats struct {
	TotalRevenue       float64 `json:"totalRevenue"`
	TotalOrders        int     `json:"totalOrders"`
	PendingOrders      int     `json:"pendingOrders"`
	ConfirmedOrders    int     `json:"confirmedOrders"`
	ShippedOrders      int     `json:"shippedOrders"`
	DeliveredOrders    int     `json:"deliveredOrders"`
	AvgOrderValue      float64 `json:"avgOrderValue"`
	WeekRevenue        float64 `json:"weekRevenue"`
	TotalProducts      int     `json:"totalProducts"`
	ActiveProducts     int     `json:"activeProducts"`
	PendingInquiries   int     `json:"pendingInquiries"`
	RespondedInquiries int     `json:"respondedInquiries"`
	FollowersCount     int     `json:"followersCount"`
	HealthScore        int     `json:"healthScore"`
}

type dailyPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue,omitempty"`
	Count   int     `json:"count,omitempty"`
}

type topProduct struct {
	Name     string  `json:"name"`
	Revenue  float64 `json:"revenue"`
	Quantity int     `json:"quantity"`
}

type recentOrder struct {
	ID     int64     `json:"id"`
	Status string    `json:"status"`
	Total  float64   `json:"total"`
	Items  int       `json:"items"`
	Date   time.Time `json:"date"`
}

// GetSellerAnalytics is the handler for GET /v1/seller/analytics?period=30
// Summarizes the caller's business over the period (days): revenue and order
// counts, inquiry response stats, top products, daily series, a health score
// and deltas against the previous period of the same length.
func (h *Handlers) GetSellerAnalytics(c *gin.Context) {
	userID := currentUserID(c)

	period, err := strconv.Atoi(c.DefaultQuery("period", "30"))
	if err != nil || period < 1 {
		period = 30
	}

	now := time.Now()
	startDate := now.AddDate(0, 0, -period)
	weekStart := now.AddDate(0, 0, -7)
	prevStartDate := now.AddDate(0, 0, -period*2)

	var (
		businessID   int64
		businessName string
		isVerified   bool
		bizCreatedAt time.Time
	)
	err = h.DB.QueryRow(`
		SELECT id, name, is_verified, created_at FROM businesses WHERE user_id = ?`,
		userID).Scan(&businessID, &businessName, &isVerified, &bizCreatedAt)
	if err != nil {
		// Sellers without a business still get a usable (empty) dashboard.
		c.JSON(http.StatusOK, gin.H{"data": gin.H{
			"business": nil,
			"stats":    AnalyticsStats{},
		}})
		return
	}

	// 1. --- Orders in the Period ---
	rows, err := h.DB.Query(`
		SELECT id, status, total_amount, created_at
		FROM orders
		WHERE business_id = ? AND created_at >= ?
		ORDER BY created_at DESC`, businessID, startDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	type orderRow struct {
		ID        int64
		Status    string
		Total     float64
		CreatedAt time.Time
	}
	var orders []orderRow
	for rows.Next() {
		var o orderRow
		if err := rows.Scan(&o.ID, &o.Status, &o.Total, &o.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order"})
			return
		}
		orders = append(orders, o)
	}
	rows.Close()

	stats := AnalyticsStats{TotalOrders: len(orders)}
	dailyRevenue := map[string]float64{}
	dailyOrders := map[string]int{}
	var totalAmountSum float64

	for _, o := range orders {
		totalAmountSum += o.Total
		day := o.CreatedAt.Format("2006-01-02")
		dailyOrders[day]++

		switch o.Status {
		case "pending":
			stats.PendingOrders++
		case "confirmed":
			stats.ConfirmedOrders++
		case "shipped":
			stats.ShippedOrders++
		case "delivered":
			stats.DeliveredOrders++
			stats.TotalRevenue += o.Total
			dailyRevenue[day] += o.Total
			if o.CreatedAt.After(weekStart) {
				stats.WeekRevenue += o.Total
			}
		}
	}
	if stats.TotalOrders > 0 {
		stats.AvgOrderValue = totalAmountSum / float64(stats.TotalOrders)
	}

	// 2. --- Products ---
	if err := h.DB.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(is_available), 0)
		FROM products WHERE business_id = ?`, businessID).Scan(
		&stats.TotalProducts, &stats.ActiveProducts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product stats"})
		return
	}

	// 3. --- Inquiries ---
	if err := h.DB.QueryRow(`
		SELECT COALESCE(SUM(i.status = 'pending'), 0), COALESCE(SUM(i.status != 'pending'), 0)
		FROM product_inquiries i
		JOIN products p ON i.product_id = p.id
		WHERE p.business_id = ? AND i.created_at >= ?`, businessID, startDate).Scan(
		&stats.PendingInquiries, &stats.RespondedInquiries); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inquiry stats"})
		return
	}

	// 4. --- Followers ---
	if err := h.DB.QueryRow("SELECT COUNT(*) FROM follows WHERE business_id = ?",
		businessID).Scan(&stats.FollowersCount); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch follower count"})
		return
	}

	// 5. --- Health Score ---
	responseRate := 100.0
	if totalInquiries := stats.PendingInquiries + stats.RespondedInquiries; totalInquiries > 0 {
		responseRate = math.Round(float64(stats.RespondedInquiries) / float64(totalInquiries) * 100)
	}
	fulfillmentRate := 100.0
	if stats.TotalOrders > 0 {
		fulfillmentRate = math.Round(float64(stats.DeliveredOrders+stats.ConfirmedOrders) / float64(stats.TotalOrders) * 100)
	}
	productAvailability := 0.0
	if stats.TotalProducts > 0 {
		productAvailability = math.Round(float64(stats.ActiveProducts) / float64(stats.TotalProducts) * 100)
	}
	verifiedBonus := 0.0
	if isVerified {
		verifiedBonus = 20
	}
	stats.HealthScore = int(math.Round(responseRate*0.3 + fulfillmentRate*0.3 + productAvailability*0.2 + verifiedBonus))

	// 6. --- Top Products by Revenue ---
	topRows, err := h.DB.Query(`
		SELECT COALESCE(p.name, 'Unknown'), SUM(oi.total_price), SUM(oi.quantity)
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		LEFT JOIN products p ON oi.product_id = p.id
		WHERE o.business_id = ? AND o.created_at >= ?
		GROUP BY p.name
		ORDER BY SUM(oi.total_price) DESC
		LIMIT 5`, businessID, startDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch top products"})
		return
	}
	defer topRows.Close()

	topProducts := []topProduct{}
	for topRows.Next() {
		var tp topProduct
		if err := topRows.Scan(&tp.Name, &tp.Revenue, &tp.Quantity); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan top product"})
			return
		}
		topProducts = append(topProducts, tp)
	}
	topRows.Close()

	// 7. --- Recent Orders ---
	recentOrders := []recentOrder{}
	for i, o := range orders {
		if i == 5 {
			break
		}
		var itemCount int
		if err := h.DB.QueryRow("SELECT COUNT(*) FROM order_items WHERE order_id = ?",
			o.ID).Scan(&itemCount); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count order items"})
			return
		}
		recentOrders = append(recentOrders, recentOrder{
			ID: o.ID, Status: o.Status, Total: o.Total, Items: itemCount, Date: o.CreatedAt,
		})
	}

	// 8. --- Previous Period Comparison ---
	var prevRevenue float64
	var prevOrdersCount int
	if err := h.DB.QueryRow(`
		SELECT COALESCE(SUM(CASE WHEN status = 'delivered' THEN total_amount ELSE 0 END), 0), COUNT(*)
		FROM orders
		WHERE business_id = ? AND created_at >= ? AND created_at < ?`,
		businessID, prevStartDate, startDate).Scan(&prevRevenue, &prevOrdersCount); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch previous period"})
		return
	}

	revenueChange := 0.0
	if prevRevenue > 0 {
		revenueChange = (stats.TotalRevenue - prevRevenue) / prevRevenue * 100
	} else if stats.TotalRevenue > 0 {
		revenueChange = 100
	}
	ordersChange := 0.0
	if prevOrdersCount > 0 {
		ordersChange = float64(stats.TotalOrders-prevOrdersCount) / float64(prevOrdersCount) * 100
	} else if stats.TotalOrders > 0 {
		ordersChange = 100
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"business": gin.H{
			"id":         businessID,
			"name":       businessName,
			"isVerified": isVerified,
			"createdAt":  bizCreatedAt,
		},
		"stats": stats,
		"charts": gin.H{
			"dailyRevenue": sortedRevenueSeries(dailyRevenue),
			"dailyOrders":  sortedOrderSeries(dailyOrders),
		},
		"topProducts":  topProducts,
		"recentOrders": recentOrders,
		"comparison": gin.H{
			"revenueChange": int(math.Round(revenueChange)),
			"ordersChange":  int(math.Round(ordersChange)),
		},
	}})
}

func sortedRevenueSeries(daily map[string]float64) []dailyPoint {
	points := make([]dailyPoint, 0, len(daily))
	for date, revenue := range daily {
		points = append(points, dailyPoint{Date: date, Revenue: revenue})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

func sortedOrderSeries(daily map[string]int) []dailyPoint {
	points := make([]dailyPoint, 0, len(daily))
	for date, count := range daily {
		points = append(points, dailyPoint{Date: date, Count: count})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}
