package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawMaterial - Hammadde (pigment, reçine, solvent vs.)
// CurrentStock hiçbir zaman negatif olamaz; stok mutasyonları sadece
// ledger paketi üzerinden yapılır.
type RawMaterial struct {
	ID           uint            `gorm:"primaryKey"`
	Name         string          `gorm:"size:255;not null"`
	SKU          string          `gorm:"size:50;uniqueIndex;not null"`
	Unit         string          `gorm:"size:20;not null"` // kg, litre
	CostPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"` // son alım fiyatı
	CurrentStock decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	ReorderLevel decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
