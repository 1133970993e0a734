package productControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ChauShunWai/node-shop/models"
	"github.com/ChauShunWai/node-shop/storage"
)

// PUT /admin/products/:id — owner-only update; a replacement image retires
// the old blob after the row is saved.
func UpdateProduct(db *gorm.DB, store storage.ObjectStore) gin.HandlerFunc {
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

		title, price, description, errs := validateProductForm(c)

		oldKey := ""
		file, err := c.FormFile("image")
		if err == nil {
			if imgErr := checkImage(file); imgErr != nil {
				errs = append(errs, *imgErr)
			}
		}
		if len(errs) > 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
			return
		}

		if file != nil {
			key, upErr := uploadImage(c, store, file)
			if upErr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
				return
			}
			oldKey = product.ImageKey
			product.ImageKey = key
		}

		product.Title = title
		product.Price = price
		product.Description = description

		if err := db.Save(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}

		if oldKey != "" {
			store.DeleteAsync(oldKey)
		}

		c.JSON(http.StatusOK, product)
	}
}
