package models

import "time"

type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	SKU         *string   `gorm:"column:sku;size:100;uniqueIndex" json:"sku"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Price       float64   `gorm:"type:decimal(15,2);not null" json:"price"`
	Quantity    int       `gorm:"not null;default:0" json:"quantity"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
}

// StockValue is price times quantity on hand.
func (p Product) StockValue() float64 { return p.Price * float64(p.Quantity) }
