package models

import "time"

type PaymentStatus string

const (
	// PaymentStatusPaid means the payment processor confirmed the session.
	PaymentStatusPaid PaymentStatus = "paid"
	// PaymentStatusWaived means the total was under the checkout minimum
	// and no payment session was created.
	PaymentStatusWaived PaymentStatus = "waived"
)

// Order is an immutable snapshot of a cart at purchase time. Lines copy
// product data by value and never join back against the live catalog.
type Order struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	UserID        string        `gorm:"index;not null" json:"user_id"`
	BuyerEmail    string        `gorm:"not null" json:"buyer_email"`
	Lines         []OrderLine   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"lines"`
	TotalAmount   float64       `json:"total_amount"`
	PaymentRef    string        `json:"payment_ref,omitempty"` // processor session id, empty when waived
	PaymentStatus PaymentStatus `gorm:"type:VARCHAR(20)" json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
}

type OrderLine struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderID     uint    `gorm:"index" json:"order_id"`
	ProductID   uint    `json:"product_id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
}
