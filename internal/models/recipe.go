package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe - Üretim reçetesi. v1'de ürün başına tek aktif reçete var
// (product_id üzerinde unique index).
type Recipe struct {
	ID        uint         `gorm:"primaryKey"`
	ProductID uint         `gorm:"uniqueIndex;not null"`
	Product   Product      `gorm:"foreignKey:ProductID"`
	Notes     string       `gorm:"size:500"`
	IsActive  bool         `gorm:"not null;default:true"`
	Items     []RecipeItem `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecipeItem - 1 birim ürün için gereken hammadde miktarı
type RecipeItem struct {
	ID               uint            `gorm:"primaryKey"`
	RecipeID         uint            `gorm:"index;not null"`
	RawMaterialID    uint            `gorm:"index;not null"`
	RawMaterial      RawMaterial     `gorm:"foreignKey:RawMaterialID"`
	QuantityRequired decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
