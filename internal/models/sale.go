package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentCredit  PaymentStatus = "credit"
	PaymentPartial PaymentStatus = "partial"
)

// Sale - Satış. Kalemleri ve taksitleriyle birlikte tek transaction
// içinde oluşturulur. BalanceDue sadece taksit ödemesiyle azalır
// (ledger.PayInstallment), başka hiçbir kod yolu bu alanı değiştirmez.
type Sale struct {
	ID            uint            `gorm:"primaryKey"`
	CustomerID    uint            `gorm:"index;not null"`
	Customer      Customer        `gorm:"foreignKey:CustomerID"`
	InvoiceNo     string          `gorm:"size:50;uniqueIndex;not null"`
	Date          time.Time       `gorm:"index;not null"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod string          `gorm:"size:20;not null;default:cash"`
	PaymentStatus PaymentStatus   `gorm:"size:20;not null"`
	DueDate       *time.Time
	BalanceDue    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedBy     uint            `gorm:"not null"`
	Creator       User            `gorm:"foreignKey:CreatedBy"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Installments  []Installment   `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SaleItem - Satış kalemi. UnitPrice satış anındaki selling_price'ın
// kopyasıdır (fiyat sonradan değişse bile kalem sabit kalır).
type SaleItem struct {
	ID        uint            `gorm:"primaryKey"`
	SaleID    uint            `gorm:"index;not null"`
	ProductID uint            `gorm:"index;not null"`
	Product   Product         `gorm:"foreignKey:ProductID"`
	Qty       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
