package routes

import (
	"net/http"

	"github.com/bizlink/bizlink-golang/internal/handlers"
	"github.com/bizlink/bizlink-golang/internal/middleware"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the configured frontend origin to call the API
// with the Authorization header.
func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight OPTIONS requests get an empty 204.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers, allowedOrigin string) *gin.Engine {
	router := gin.Default()

	router.Use(CORSMiddleware(allowedOrigin))
	router.Use(middleware.RequestLogger())

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/register", h.Register)
		v1.POST("/login", h.Login)

		// --- Public Browse Routes ---
		v1.GET("/businesses", h.ListBusinesses)
		v1.GET("/businesses/:id", h.GetBusiness)
		v1.GET("/categories", h.ListCategories)
		v1.GET("/products", h.ListProducts)
		v1.GET("/products/:id", h.GetProduct)
		v1.GET("/rfqs", h.ListRFQs)
		v1.GET("/rfqs/:id", h.GetRFQ)
		v1.GET("/rfqs/:id/quotes", h.ListQuotes)
		v1.GET("/discover", h.GetDiscover)
		v1.GET("/posts", h.ListPosts)
		v1.GET("/users/:id", h.GetUser)
		v1.GET("/users/:id/stats", h.GetUserStats)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthRequired())
		{
			// --- Profile ---
			auth.GET("/auth", h.GetProfile)
			auth.PUT("/auth", h.UpdateProfile)

			// --- Business Routes ---
			auth.POST("/businesses", h.CreateBusiness)
			auth.PUT("/businesses/:id", h.UpdateBusiness)
			auth.DELETE("/businesses/:id", h.DeleteBusiness)

			// --- Category Routes ---
			auth.POST("/categories", h.CreateCategory)
			auth.PUT("/categories/:id", h.UpdateCategory)
			auth.DELETE("/categories/:id", h.DeleteCategory)

			// --- Product Routes ---
			auth.POST("/products", h.CreateProduct)
			auth.PUT("/products/:id", h.UpdateProduct)
			auth.DELETE("/products/:id", h.DeleteProduct)
			auth.POST("/products/:id/inquiry", h.CreateInquiry)

			// --- Cart Routes ---
			auth.GET("/cart", h.GetCart)
			auth.POST("/cart", h.AddToCart)
			auth.PUT("/cart/:productId", h.UpdateCartItem)
			auth.DELETE("/cart/:productId", h.DeleteCartItem)

			// --- Order Routes ---
			auth.POST("/orders", h.CreateOrders)
			auth.POST("/orders/from-quote", h.CreateOrderFromQuote)
			auth.GET("/orders", h.GetMyOrders)
			auth.GET("/orders/:id", h.GetOrderDetails)
			auth.PATCH("/orders/:id", h.EditOrder)
			auth.PUT("/orders/:id/status", h.UpdateOrderStatus)

			// --- RFQ & Quote Routes ---
			auth.POST("/rfqs", h.CreateRFQ)
			auth.PUT("/rfqs/:id", h.UpdateRFQ)
			auth.DELETE("/rfqs/:id", h.DeleteRFQ)
			auth.POST("/rfqs/:id/quotes", h.SubmitQuote)
			auth.PUT("/quotes/:id", h.UpdateQuoteStatus)

			// --- Chat Routes ---
			auth.GET("/chat", h.ListConversations)
			auth.POST("/chat", h.OpenConversation)
			auth.GET("/chat/:id/messages", h.GetMessages)
			auth.POST("/chat/:id/messages", h.SendMessage)

			// --- Social Routes ---
			auth.GET("/follows", h.CheckFollow)
			auth.POST("/follows", h.ToggleFollow)
			auth.GET("/favourites", h.ListFavourites)
			auth.POST("/favourites", h.AddFavourite)
			auth.DELETE("/favourites/:productId", h.RemoveFavourite)

			// --- Post Routes ---
			auth.POST("/posts", h.CreatePost)

			// --- Seller Routes ---
			auth.GET("/seller/orders", h.GetSellerOrders)
			auth.GET("/seller/inquiries", h.GetSellerInquiries)
			auth.PATCH("/seller/inquiries/:id", h.RespondToInquiry)
			auth.GET("/seller/analytics", h.GetSellerAnalytics)
		}
	}

	return router
}
