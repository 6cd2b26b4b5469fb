package routers

import (
	"citystore-api-io/api/internal/container"
	"citystore-api-io/api/internal/middleware"
	"citystore-api-io/api/pkg/models"

	"github.com/gin-gonic/gin"
)

// InitRoute creates the Gin router for every API endpoint.
func InitRoute(serviceContainer *container.ServiceContainer) *gin.Engine {
	cfg := serviceContainer.Config

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	router.Use(middleware.CorsMiddleware(cfg.AllowedOrigins))

	status := serviceContainer.StatusController
	router.GET("/", status.Root())

	api := router.Group("/api", middleware.RateLimiter(serviceContainer.Deps.Redis, cfg.RateLimitWindow, cfg.RateLimit))
	{
		api.GET("/health", status.Health())

		setupAuthRoutes(api, serviceContainer)
		productRoutes(api, serviceContainer)
		cartRoutes(api, serviceContainer)
		checkoutRoutes(api, serviceContainer)
		orderRoutes(api, serviceContainer)
	}

	return router
}

// setupAuthRoutes configures token endpoints
func setupAuthRoutes(api *gin.RouterGroup, serviceContainer *container.ServiceContainer) {
	authController := serviceContainer.AuthController
	secured := api.Group("/auth", serviceContainer.Authenticator.Protect())
	secured.GET("/me", authController.CurrentUser())
	secured.POST("/logout", authController.Logout())
}

// productRoutes configures catalog endpoints
func productRoutes(api *gin.RouterGroup, serviceContainer *container.ServiceContainer) {
	products := api.Group("/products")
	productController := serviceContainer.GetProductController()
	reviewController := serviceContainer.GetReviewController()
	authenticator := serviceContainer.Authenticator

	products.GET("", productController.GetProducts())
	products.GET("/featured", productController.GetFeaturedProducts())
	products.GET("/:id", productController.GetProduct())

	products.POST("/:id/reviews", authenticator.Protect(), reviewController.CreateProductReview())

	admin := products.Group("", authenticator.Protect(), middleware.Authorize(models.RoleAdmin))
	{
		admin.POST("", productController.CreateProduct())
		admin.PUT("/:id", productController.UpdateProduct())
		admin.DELETE("/:id", productController.DeleteProduct())
		admin.POST("/:id/images", productController.UploadProductImage())
	}
}

// cartRoutes configures anonymous cart sessions
func cartRoutes(api *gin.RouterGroup, serviceContainer *container.ServiceContainer) {
	carts := api.Group("/carts")
	cartController := serviceContainer.GetCartController()

	carts.POST("", cartController.CreateSession())
	carts.GET("/:session", cartController.GetCart())
	carts.DELETE("/:session", cartController.ClearCart())

	carts.POST("/:session/items", cartController.AddCartItem())
	carts.PUT("/:session/items", cartController.UpdateCartItemQuantity())
	carts.DELETE("/:session/items", cartController.RemoveCartItem())

	carts.PUT("/:session/shipping-address", cartController.SaveShippingAddress())
	carts.PUT("/:session/payment-method", cartController.SavePaymentMethod())
}

// checkoutRoutes configures the checkout wizard. Checkout requires a signed in
// user; their profile prefills the form and they own the order.
func checkoutRoutes(api *gin.RouterGroup, serviceContainer *container.ServiceContainer) {
	checkoutController := serviceContainer.GetCheckoutController()
	session := api.Group("/checkout/:session", serviceContainer.Authenticator.Protect())

	session.GET("", checkoutController.GetCheckout())
	session.DELETE("", checkoutController.ResetCheckout())
	session.PUT("/shipping", checkoutController.UpdateShipping())
	session.PUT("/payment", checkoutController.UpdatePayment())
	session.PUT("/notes", checkoutController.UpdateNotes())
	session.POST("/next", checkoutController.NextStep())
	session.POST("/back", checkoutController.PreviousStep())
	session.POST("/place", checkoutController.PlaceOrder())
}

// orderRoutes configures order endpoints
func orderRoutes(api *gin.RouterGroup, serviceContainer *container.ServiceContainer) {
	orders := api.Group("/orders", serviceContainer.Authenticator.Protect())
	orderController := serviceContainer.GetOrderController()

	orders.POST("", orderController.CreateOrder())
	orders.GET("/mine", orderController.GetMyOrders())
	orders.GET("/:id", orderController.GetOrder())
	orders.GET("", middleware.Authorize(models.RoleAdmin), orderController.GetOrders())
}
