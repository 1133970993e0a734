package orderControllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/ChauShunWai/node-shop/controllers/cart"
	"github.com/ChauShunWai/node-shop/metrics"
	"github.com/ChauShunWai/node-shop/models"
)

var ErrEmptyCart = errors.New("cart is empty")

// Materialize builds an order snapshot from a resolved cart. Product data
// is copied by value: later edits or deletions of the products leave the
// order untouched. Inputs are not mutated.
func Materialize(userID, email string, items []cartControllers.ResolvedItem, now time.Time) models.Order {
	lines := make([]models.OrderLine, 0, len(items))
	var total float64
	for _, item := range items {
		lines = append(lines, models.OrderLine{
			ProductID:   item.Product.ID,
			Title:       item.Product.Title,
			Price:       item.Product.Price,
			Description: item.Product.Description,
			Quantity:    item.Quantity,
		})
		total += float64(item.Quantity) * item.Product.Price
	}
	return models.Order{
		UserID:      userID,
		BuyerEmail:  email,
		Lines:       lines,
		TotalAmount: total,
		CreatedAt:   now,
	}
}

// Place records the order and then clears the cart. The two writes are
// intentionally not one transaction: once the order row exists it is
// financially authoritative, so a failed cart clear is logged for
// reconciliation and the caller still reports success to the buyer.
func Place(db *gorm.DB, order *models.Order) error {
	if len(order.Lines) == 0 {
		return ErrEmptyCart
	}
	if err := db.Create(order).Error; err != nil {
		return err
	}
	metrics.OrdersPlaced.Inc()

	if err := cartControllers.Clear(db, order.UserID); err != nil {
		metrics.ReconciliationFaults.Inc()
		log.Printf("[order] reconcile=cart_clear_failed order_id=%d user_id=%s err=%v",
			order.ID, order.UserID, err)
	}

	broadcastNewOrder(*order)
	return nil
}

// -------- Handlers --------

// GET /orders
func GetOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var orders []models.Order
		if err := db.
			Where("user_id = ?", userID).
			Preload("Lines").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// loadOwnedOrder fetches an order and enforces that it belongs to the
// caller. Exists/ownership errors map onto 404 and 403.
func loadOwnedOrder(c *gin.Context, db *gorm.DB) (models.Order, bool) {
	userID := c.GetString("user_id")
	id := c.Param("orderID")

	var order models.Order
	if err := db.Preload("Lines").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return models.Order{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return models.Order{}, false
	}
	if order.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return models.Order{}, false
	}
	return order, true
}

// GET /orders/:orderID
func GetOrderByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, ok := loadOwnedOrder(c, db)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
