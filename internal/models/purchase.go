package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase - Tedarikçiden hammadde alımı. Kalemlerle birlikte tek
// transaction içinde oluşturulur, oluşturulduktan sonra değişmez.
type Purchase struct {
	ID          uint            `gorm:"primaryKey"`
	SupplierID  uint            `gorm:"index;not null"`
	Supplier    Supplier        `gorm:"foreignKey:SupplierID"`
	InvoiceNo   string          `gorm:"size:50"`
	Date        time.Time       `gorm:"index;not null"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedBy   uint            `gorm:"not null"`
	Creator     User            `gorm:"foreignKey:CreatedBy"`
	Items       []PurchaseItem  `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type PurchaseItem struct {
	ID            uint            `gorm:"primaryKey"`
	PurchaseID    uint            `gorm:"index;not null"`
	RawMaterialID uint            `gorm:"index;not null"`
	RawMaterial   RawMaterial     `gorm:"foreignKey:RawMaterialID"`
	Qty           decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
