package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/ChauShunWai/node-shop/controllers/cart"
	checkoutControllers "github.com/ChauShunWai/node-shop/controllers/checkout"
	orderControllers "github.com/ChauShunWai/node-shop/controllers/order"
	productControllers "github.com/ChauShunWai/node-shop/controllers/product"
	"github.com/ChauShunWai/node-shop/email"
	"github.com/ChauShunWai/node-shop/middleware"
	"github.com/ChauShunWai/node-shop/payments"
)

// SetupShopRoutes registers the storefront surface: browsing, cart,
// checkout and order history.
func SetupShopRoutes(r *gin.Engine, db *gorm.DB, gw payments.Gateway, mailer email.Sender) {
	// Public catalog browsing
	r.GET("/products", productControllers.GetProducts(db))
	r.GET("/products/:id", productControllers.GetProductByID(db))

	shop := r.Group("/")
	shop.Use(middleware.ValidateToken)
	{
		// Cart
		shop.GET("/cart", cartControllers.GetCartHandler(db))
		shop.POST("/cart", cartControllers.AddToCartHandler(db))
		shop.POST("/cart-delete-item", cartControllers.RemoveFromCartHandler(db))

		// Checkout
		shop.GET("/checkout", checkoutControllers.CheckoutHandler(db, gw))
		shop.GET("/checkout/success", checkoutControllers.CheckoutSuccessHandler(db, gw, mailer))
		shop.GET("/checkout/cancel", checkoutControllers.CheckoutCancelHandler())

		// Orders + invoices
		shop.GET("/orders", orderControllers.GetOrdersHandler(db))
		shop.GET("/orders/:orderID", orderControllers.GetOrderByIDHandler(db))
		shop.GET("/orders/:orderID/invoice", orderControllers.GetInvoiceHandler(db))
	}

	// Real-time order feed for ops tooling
	r.GET("/orders-feed", middleware.RequireOpsKey(), orderControllers.OrderFeedHandler)
}
