package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type StockItemKind string

const (
	StockItemRawMaterial StockItemKind = "raw_material"
	StockItemProduct     StockItemKind = "product"
)

type MovementReason string

const (
	MovementProduction MovementReason = "production"
	MovementSale       MovementReason = "sale"
	MovementRestock    MovementReason = "restock"
	MovementManual     MovementReason = "manual"
)

// StockMovement - Append-only stok hareket kaydı. current_stock alanıyla
// aynı transaction içinde yazılır; denetim izi içindir, stok doğruluğu
// için otorite değildir.
type StockMovement struct {
	ID          uint            `gorm:"primaryKey"`
	ItemKind    StockItemKind   `gorm:"size:20;not null;index:idx_stock_movements_item"`
	ItemID      uint            `gorm:"not null;index:idx_stock_movements_item"`
	Delta       decimal.Decimal `gorm:"type:decimal(12,3);not null"` // pozitif giriş, negatif çıkış
	Reason      MovementReason  `gorm:"size:20;not null;index"`
	ReferenceID *uint           // ilgili üretim/satış/alım kaydının ID'si
	Note        string          `gorm:"size:255"`
	CreatedBy   uint            `gorm:"not null"`
	CreatedAt   time.Time
}
