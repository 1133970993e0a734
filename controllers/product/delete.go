package productControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ChauShunWai/node-shop/models"
	"github.com/ChauShunWai/node-shop/storage"
)

// DELETE /admin/products/:id — owner-only; the stored image goes with the
// product, fire-and-forget. Cart lines that referenced the product are
// pruned lazily on the next cart read.
func DeleteProduct(db *gorm.DB, store storage.ObjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID := c.GetString("user_id")
		id := c.Param("id")

		var product models.Product
		if err := db.Where("id = ? AND seller_id = ?", id, sellerID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
			return
		}

		if err := db.Delete(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
			return
		}

		store.DeleteAsync(product.ImageKey)

		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}
