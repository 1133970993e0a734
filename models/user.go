package models

import "time"

type User struct {
	ID               string     `gorm:"primaryKey" json:"id"`
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash     string     `json:"-"`
	ResetToken       string     `gorm:"index" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	Cart             Cart       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"cart"`
	Orders           []Order    `gorm:"foreignKey:UserID" json:"orders,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
