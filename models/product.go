package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Price       float64        `gorm:"not null" json:"price"`
	Description string         `json:"description"`
	ImageKey    string         `gorm:"not null" json:"image_key"` // blob storage object key
	SellerID    string         `gorm:"index;not null" json:"seller_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
