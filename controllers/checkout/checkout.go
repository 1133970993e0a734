package checkoutControllers

import (
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/ChauShunWai/node-shop/controllers/cart"
	orderControllers "github.com/ChauShunWai/node-shop/controllers/order"
	"github.com/ChauShunWai/node-shop/email"
	"github.com/ChauShunWai/node-shop/metrics"
	"github.com/ChauShunWai/node-shop/models"
	"github.com/ChauShunWai/node-shop/payments"
)

const defaultMinTotal = 4

// minTotal is the threshold under which no payment session is created and
// the order is recorded with a waived payment. A low-value bypass, not a
// security check.
func minTotal() float64 {
	if v := os.Getenv("CHECKOUT_MIN_TOTAL"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return defaultMinTotal
}

func baseURL(c *gin.Context) string {
	if v := os.Getenv("BASE_URL"); v != "" {
		return v
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

// GET /checkout — cart review. Above the minimum total this creates a
// payment session and hands back the hosted payment URL; below it the
// client goes straight to /checkout/success.
func CheckoutHandler(db *gorm.DB, gw payments.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		items, err := cartControllers.Resolve(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		if len(items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}

		total := cartControllers.Total(items)
		if total < minTotal() {
			c.JSON(http.StatusOK, gin.H{
				"items":            items,
				"total_price":      total,
				"payment_required": false,
			})
			return
		}

		lineItems := make([]payments.LineItem, 0, len(items))
		for _, item := range items {
			lineItems = append(lineItems, payments.LineItem{
				Name:        item.Product.Title,
				Description: item.Product.Description,
				UnitAmount:  int64(math.Round(item.Product.Price * 100)),
				Quantity:    item.Quantity,
			})
		}

		base := baseURL(c)
		session, err := gw.CreateSession(c.Request.Context(), lineItems,
			base+"/checkout/success?session_id={CHECKOUT_SESSION_ID}",
			base+"/checkout/cancel",
		)
		if err != nil {
			metrics.CheckoutFailures.WithLabelValues("session_create").Inc()
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"items":            items,
			"total_price":      total,
			"payment_required": true,
			"session_id":       session.ID,
			"payment_url":      session.URL,
		})
	}
}

// GET /checkout/success — confirmation is verified against the processor's
// own record of the session, never inferred from the redirect alone. The
// sessionless path is only honored for totals under the bypass threshold,
// re-computed server-side.
func CheckoutSuccessHandler(db *gorm.DB, gw payments.Gateway, mailer email.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		buyerEmail := c.GetString("email")

		items, err := cartControllers.Resolve(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		if len(items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}

		sessionID := c.Query("session_id")
		var ref string
		var status models.PaymentStatus

		if sessionID != "" {
			paid, err := gw.VerifySession(c.Request.Context(), sessionID)
			if err != nil {
				metrics.CheckoutFailures.WithLabelValues("verify").Inc()
				c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
				return
			}
			if !paid {
				metrics.CheckoutFailures.WithLabelValues("unpaid").Inc()
				c.JSON(http.StatusPaymentRequired, gin.H{"error": "Payment has not been confirmed"})
				return
			}
			ref = sessionID
			status = models.PaymentStatusPaid
		} else {
			if cartControllers.Total(items) >= minTotal() {
				metrics.CheckoutFailures.WithLabelValues("unpaid").Inc()
				c.JSON(http.StatusPaymentRequired, gin.H{"error": "Payment is required for this order"})
				return
			}
			status = models.PaymentStatusWaived
		}

		order := orderControllers.Materialize(userID, buyerEmail, items, time.Now())
		order.PaymentRef = ref
		order.PaymentStatus = status

		if err := orderControllers.Place(db, &order); err != nil {
			metrics.CheckoutFailures.WithLabelValues("record").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record order"})
			return
		}

		// Failures past this point never reach the buyer: the order exists.
		go func(orderID uint, to string, total float64) {
			subject := fmt.Sprintf("Order #%d confirmed", orderID)
			plain := fmt.Sprintf(
				"Thank you for your purchase!\nOrder #%d has been recorded, total $ %.2f.\nYour invoice is available under your orders.",
				orderID, total)
			if err := mailer.Send(to, subject, plain, ""); err != nil {
				metrics.ReconciliationFaults.Inc()
				log.Printf("[checkout] reconcile=confirmation_mail_failed order_id=%d to=%s err=%v", orderID, to, err)
			}
		}(order.ID, buyerEmail, order.TotalAmount)

		c.JSON(http.StatusOK, gin.H{
			"message":  "Order placed successfully",
			"order_id": order.ID,
		})
	}
}

// GET /checkout/cancel — nothing was written, the cart is untouched.
func CheckoutCancelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Checkout cancelled"})
	}
}
