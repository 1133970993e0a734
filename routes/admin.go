package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	productControllers "github.com/ChauShunWai/node-shop/controllers/product"
	"github.com/ChauShunWai/node-shop/middleware"
	"github.com/ChauShunWai/node-shop/storage"
)

// SetupAdminRoutes registers the seller-facing product CRUD. Every
// operation is scoped to the authenticated seller's own products.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB, store storage.ObjectStore) {
	admin := r.Group("/admin")
	admin.Use(middleware.ValidateToken)
	{
		admin.GET("/products", productControllers.GetSellerProducts(db))
		admin.GET("/products/export", productControllers.ExportSellerProducts(db))
		admin.POST("/products", productControllers.CreateProduct(db, store))
		admin.PUT("/products/:id", productControllers.UpdateProduct(db, store))
		admin.DELETE("/products/:id", productControllers.DeleteProduct(db, store))
	}
}
