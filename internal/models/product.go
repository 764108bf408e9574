package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product - Mamul (satışa hazır boya)
type Product struct {
	ID            uint            `gorm:"primaryKey"`
	Name          string          `gorm:"size:255;not null"`
	SKU           string          `gorm:"size:50;uniqueIndex;not null"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CurrentStock  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	MinStockLevel decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
