package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ChauShunWai/node-shop/email"
	"github.com/ChauShunWai/node-shop/metrics"
	"github.com/ChauShunWai/node-shop/middleware"
	"github.com/ChauShunWai/node-shop/payments"
	"github.com/ChauShunWai/node-shop/storage"
)

// SetupRoutes is the single entry point that wires up every route group.
func SetupRoutes(r *gin.Engine, db *gorm.DB, gw payments.Gateway, store storage.ObjectStore, mailer email.Sender) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, db, mailer)

	// Storefront browsing + cart + checkout + orders (JWT-protected where needed)
	SetupShopRoutes(r, db, gw, mailer)

	// Seller product CRUD (JWT-protected, owner-scoped)
	SetupAdminRoutes(r, db, store)

	// Ops endpoints behind the shared API key
	ops := r.Group("/")
	ops.Use(middleware.RequireOpsKey())
	{
		ops.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
}
