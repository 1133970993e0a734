package productControllers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ChauShunWai/node-shop/models"
	"github.com/ChauShunWai/node-shop/storage"
)

const maxImageBytes = 512 * 1024

// validateProductForm pulls title/price/description out of the multipart
// form and reports problems per field.
func validateProductForm(c *gin.Context) (title string, price float64, description string, errs []models.FieldError) {
	title = strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		errs = append(errs, models.FieldError{Field: "title", Message: "Title is required"})
	}

	priceStr := c.PostForm("price")
	if priceStr == "" {
		errs = append(errs, models.FieldError{Field: "price", Message: "Price is required"})
	} else {
		parsed, err := strconv.ParseFloat(priceStr, 64)
		switch {
		case err != nil:
			errs = append(errs, models.FieldError{Field: "price", Message: "Price must be a number"})
		case parsed < 0:
			errs = append(errs, models.FieldError{Field: "price", Message: "Price must not be negative"})
		default:
			price = parsed
		}
	}

	description = c.PostForm("description")
	return title, price, description, errs
}

// checkImage enforces the image/* content type and the upload size cap.
func checkImage(file *multipart.FileHeader) *models.FieldError {
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		return &models.FieldError{Field: "image", Message: "Please upload a valid image"}
	}
	if file.Size > maxImageBytes {
		return &models.FieldError{Field: "image", Message: "Max picture size is 512 KB"}
	}
	return nil
}

// uploadImage streams the file into blob storage under a fresh key.
func uploadImage(c *gin.Context, store storage.ObjectStore, file *multipart.FileHeader) (string, error) {
	contentType := file.Header.Get("Content-Type")
	ext := contentType[strings.Index(contentType, "/")+1:]
	key := fmt.Sprintf("%d-%s.%s", time.Now().UnixMilli(), uuid.NewString(), ext)

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := store.Upload(c.Request.Context(), key, src, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// POST /admin/products
func CreateProduct(db *gorm.DB, store storage.ObjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID := c.GetString("user_id")

		title, price, description, errs := validateProductForm(c)

		file, err := c.FormFile("image")
		if err != nil {
			errs = append(errs, models.FieldError{Field: "image", Message: "Please upload a valid image"})
		} else if imgErr := checkImage(file); imgErr != nil {
			errs = append(errs, *imgErr)
		}
		if len(errs) > 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
			return
		}

		key, err := uploadImage(c, store, file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
			return
		}

		product := models.Product{
			Title:       title,
			Price:       price,
			Description: description,
			ImageKey:    key,
			SellerID:    sellerID,
		}
		if err := db.Create(&product).Error; err != nil {
			// Keep storage consistent with the failed insert.
			store.DeleteAsync(key)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}

		c.JSON(http.StatusCreated, product)
	}
}
