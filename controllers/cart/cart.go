package cartControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ChauShunWai/node-shop/models"
)

// ErrProductNotFound is the validation fault for an unresolvable product
// reference on add-to-cart. Nothing is written when it is returned.
var ErrProductNotFound = errors.New("product does not exist")

// ResolvedItem is one cart line joined against the live catalog.
type ResolvedItem struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// Total sums quantity times unit price over resolved lines.
func Total(items []ResolvedItem) float64 {
	var total float64
	for _, item := range items {
		total += float64(item.Quantity) * item.Product.Price
	}
	return total
}

func getOrCreateCart(db *gorm.DB, userID string) (models.Cart, error) {
	var cart models.Cart
	err := db.Where(models.Cart{UserID: userID}).FirstOrCreate(&cart).Error
	return cart, err
}

// Add puts one unit of the product into the user's cart. An existing line
// is incremented atomically at the database, so concurrent adds cannot
// lose counts.
func Add(db *gorm.DB, userID string, productID uint) error {
	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	cart, err := getOrCreateCart(db, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	item := models.CartItem{
		CartID:    cart.CartID,
		ProductID: productID,
		Quantity:  1,
		AddedAt:   now,
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("cart_items.quantity + 1"),
			"added_at": now,
		}),
	}).Create(&item).Error
}

// Remove drops the line for the product. Removing an absent line is a
// no-op.
func Remove(db *gorm.DB, userID string, productID uint) error {
	var cart models.Cart
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return db.Where("cart_id = ? AND product_id = ?", cart.CartID, productID).
		Delete(&models.CartItem{}).Error
}

// Resolve reads the cart joined against the live catalog. Lines whose
// product no longer exists are dropped from the result and deleted from
// the cart, so a dangling reference is healed by the read itself.
func Resolve(db *gorm.DB, userID string) ([]ResolvedItem, error) {
	var cart models.Cart
	if err := db.Preload("Items").Where(models.Cart{UserID: userID}).FirstOrCreate(&cart).Error; err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return []ResolvedItem{}, nil
	}

	ids := make([]uint, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	var products []models.Product
	if err := db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	resolved := make([]ResolvedItem, 0, len(cart.Items))
	var stale []uint
	for _, item := range cart.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			stale = append(stale, item.ID)
			continue
		}
		resolved = append(resolved, ResolvedItem{Product: product, Quantity: item.Quantity})
	}
	if len(stale) > 0 {
		if err := db.Where("id IN ?", stale).Delete(&models.CartItem{}).Error; err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// Clear empties the cart in one shot. Used after a recorded order and by
// nothing else.
func Clear(db *gorm.DB, userID string) error {
	var cart models.Cart
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return db.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error
}

// -------- Handlers --------

type cartItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// GET /cart
func GetCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		items, err := Resolve(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"items":       items,
			"total_price": Total(items),
		})
	}
}

// POST /cart
func AddToCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var input cartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if err := Add(db, userID, input.ProductID); err != nil {
			if errors.Is(err, ErrProductNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"errors": []models.FieldError{
					{Field: "product_id", Message: "Product does not exist"},
				}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Item added to cart"})
	}
}

// POST /cart-delete-item
func RemoveFromCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var input cartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if err := Remove(db, userID, input.ProductID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item deleted"})
	}
}
