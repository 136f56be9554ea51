// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

// Services are the domain services the routes expose
type Services struct {
	Products   *product.Service
	Categories *product.CategoryService
	Reviews    *product.ReviewService
	Inventory  *inventory.Service
	Cart       *cart.Service
	Coupons    *coupon.Service
	Orders     *order.Service
	Payments   *payment.Service
}

// Handlers groups every HTTP handler
type Handlers struct {
	Product   *handlers.ProductHandler
	Category  *handlers.CategoryHandler
	Review    *handlers.ReviewHandler
	Inventory *handlers.InventoryHandler
	Cart      *handlers.CartHandler
	Coupon    *handlers.CouponHandler
	Checkout  *handlers.CheckoutHandler
	Order     *handlers.OrderHandler
	Payment   *handlers.PaymentHandler
}

// NewHandlers builds the handlers over the services
func NewHandlers(s Services, cfg *config.Config, logger *logrus.Logger) *Handlers {
	return &Handlers{
		Product:   handlers.NewProductHandler(s.Products),
		Category:  handlers.NewCategoryHandler(s.Categories),
		Review:    handlers.NewReviewHandler(s.Reviews),
		Inventory: handlers.NewInventoryHandler(s.Inventory),
		Cart:      handlers.NewCartHandler(s.Cart),
		Coupon:    handlers.NewCouponHandler(s.Coupons, s.Cart),
		Checkout:  handlers.NewCheckoutHandler(s.Cart, s.Coupons, s.Orders, logger),
		Order:     handlers.NewOrderHandler(s.Orders),
		Payment:   handlers.NewPaymentHandler(s.Payments, s.Orders, cfg, logger),
	}
}

// SetupRoutes registers every route group under rg
func SetupRoutes(rg *gin.RouterGroup, h *Handlers, jwtManager *auth.JWTManager) {
	SetupProductRoutes(rg, h, jwtManager)
	SetupCartRoutes(rg, h, jwtManager)
	SetupOrderRoutes(rg, h, jwtManager)
	SetupWebhookRoutes(rg, h)
	SetupAdminRoutes(rg, h, jwtManager)
}

// SetupProductRoutes sets up catalog routes and the signed-in review routes
func SetupProductRoutes(rg *gin.RouterGroup, h *Handlers, jwtManager *auth.JWTManager) {
	products := rg.Group("/products")
	products.Use(middleware.OptionalAuthMiddleware(jwtManager))
	{
		products.GET("", h.Product.ListProducts)
		products.GET("/:id", h.Product.GetProduct)
		products.GET("/sku/:sku", h.Product.GetProductBySKU)
		products.GET("/:id/reviews", h.Review.ListProductReviews)
		products.GET("/:id/reviews/summary", h.Review.GetReviewSummary)
	}

	rg.GET("/categories", h.Category.GetCategoryTree)
	rg.GET("/categories/:slug", h.Category.GetCategoryBySlug)
	rg.GET("/brands", h.Category.ListBrands)

	reviews := rg.Group("")
	reviews.Use(middleware.AuthMiddleware(jwtManager))
	{
		reviews.POST("/products/:id/reviews", h.Review.CreateReview)
		reviews.PUT("/reviews/:id", h.Review.UpdateReview)
		reviews.DELETE("/reviews/:id", h.Review.DeleteReview)
		reviews.POST("/reviews/:id/helpful", h.Review.VoteHelpful)
	}
}

// SetupCartRoutes sets up cart, coupon and checkout routes. Guests are
// identified by the X-Session-ID header.
func SetupCartRoutes(rg *gin.RouterGroup, h *Handlers, jwtManager *auth.JWTManager) {
	cartGroup := rg.Group("/cart")
	cartGroup.Use(middleware.OptionalAuthMiddleware(jwtManager))
	{
		cartGroup.GET("", h.Cart.GetCart)
		cartGroup.DELETE("", h.Cart.ClearCart)
		cartGroup.POST("/items", h.Cart.AddItem)
		cartGroup.PUT("/items/:product_id", h.Cart.UpdateItem)
		cartGroup.DELETE("/items/:product_id", h.Cart.RemoveItem)
	}

	signedIn := rg.Group("/cart")
	signedIn.Use(middleware.AuthMiddleware(jwtManager))
	{
		signedIn.POST("/merge", h.Cart.MergeCart)
		signedIn.POST("/coupon", h.Coupon.ApplyCoupon)
		signedIn.DELETE("/coupon", h.Coupon.RemoveCoupon)
	}

	coupons := rg.Group("/coupons")
	coupons.Use(middleware.OptionalAuthMiddleware(jwtManager))
	{
		coupons.POST("/validate", h.Coupon.ValidateCoupon)
	}

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.OptionalAuthMiddleware(jwtManager))
	{
		checkout.POST("/preview", h.Checkout.Preview)
		checkout.POST("", h.Checkout.PlaceOrder)
	}
}

// SetupOrderRoutes sets up customer order routes
func SetupOrderRoutes(rg *gin.RouterGroup, h *Handlers, jwtManager *auth.JWTManager) {
	rg.GET("/orders/track/:order_number", h.Order.TrackOrder)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(jwtManager))
	{
		orders.GET("", h.Order.GetOrders)
		orders.GET("/:id", h.Order.GetOrder)
		orders.POST("/:id/cancel", h.Order.CancelOrder)
		orders.POST("/:id/pay", h.Payment.InitiatePayment)
		orders.POST("/:id/pay/verify", h.Payment.VerifyPayment)
	}
}

// SetupWebhookRoutes sets up payment gateway callbacks (signature checked
// by the handler)
func SetupWebhookRoutes(rg *gin.RouterGroup, h *Handlers) {
	webhooks := rg.Group("/webhooks")
	{
		webhooks.POST("/razorpay", h.Payment.WebhookHandler)
	}
}

// SetupAdminRoutes sets up back office routes
func SetupAdminRoutes(rg *gin.RouterGroup, h *Handlers, jwtManager *auth.JWTManager) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/dashboard", h.Order.AdminDashboard)

		// Catalog
		admin.GET("/products", h.Product.AdminListProducts)
		admin.POST("/products", h.Inventory.CreateProduct)
		admin.GET("/products/:id", h.Product.AdminGetProduct)
		admin.PUT("/products/:id", h.Product.UpdateProduct)
		admin.DELETE("/products/:id", h.Product.DeleteProduct)
		admin.GET("/categories", h.Category.AdminListCategories)
		admin.POST("/categories", h.Category.CreateCategory)
		admin.PUT("/categories/:id", h.Category.UpdateCategory)
		admin.DELETE("/categories/:id", h.Category.DeleteCategory)
		admin.GET("/brands", h.Category.AdminListBrands)
		admin.POST("/brands", h.Category.CreateBrand)
		admin.PUT("/brands/:id", h.Category.UpdateBrand)

		// Reviews
		admin.GET("/reviews", h.Review.AdminListReviews)
		admin.PUT("/reviews/:id/status", h.Review.ModerateReview)

		// Stock ledger
		admin.PUT("/inventory/stock", h.Inventory.SetStock)
		admin.PUT("/inventory/stock/bulk", h.Inventory.BulkSetStock)
		admin.GET("/inventory/movements", h.Inventory.ListMovements)
		admin.GET("/inventory/reconcile", h.Inventory.Reconcile)
		admin.GET("/inventory/alerts", h.Inventory.ListAlerts)
		admin.POST("/inventory/alerts/:id/resolve", h.Inventory.ResolveAlert)

		// Coupons
		admin.GET("/coupons", h.Coupon.ListCoupons)
		admin.POST("/coupons", h.Coupon.CreateCoupon)
		admin.GET("/coupons/:id", h.Coupon.GetCoupon)
		admin.POST("/coupons/:id/deactivate", h.Coupon.DeactivateCoupon)

		// Orders
		admin.GET("/orders", h.Order.AdminGetOrders)
		admin.GET("/orders/:id", h.Order.AdminGetOrder)
		admin.PUT("/orders/:id/status", h.Order.AdminUpdateOrderStatus)
		admin.POST("/orders/:id/cancel", h.Order.AdminCancelOrder)
		admin.POST("/orders/:id/mark-paid", h.Order.AdminMarkPaid)
		admin.POST("/orders/:id/refund", h.Order.AdminRefundOrder)
	}
}
