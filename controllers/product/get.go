package productControllers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ChauShunWai/node-shop/models"
)

const itemsPerPage = 8

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// GET /products — public storefront listing, paginated.
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := pageParam(c)

		var total int64
		if err := db.Model(&models.Product{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
			return
		}
		pages := int(math.Ceil(float64(total) / itemsPerPage))

		var products []models.Product
		if err := db.
			Offset((page - 1) * itemsPerPage).
			Limit(itemsPerPage).
			Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"products": products,
			"page":     page,
			"pages":    pages,
		})
	}
}

// GET /products/:id — public detail view.
func GetProductByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		var product models.Product
		if err := db.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// GET /admin/products — the seller's own products, paginated.
func GetSellerProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID := c.GetString("user_id")
		page := pageParam(c)

		var total int64
		if err := db.Model(&models.Product{}).Where("seller_id = ?", sellerID).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
			return
		}
		pages := int(math.Ceil(float64(total) / itemsPerPage))
		if pages == 0 {
			pages = 1
		}

		var products []models.Product
		if err := db.
			Where("seller_id = ?", sellerID).
			Offset((page - 1) * itemsPerPage).
			Limit(itemsPerPage).
			Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"products": products,
			"page":     page,
			"pages":    pages,
		})
	}
}
