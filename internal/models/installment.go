package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "pending"
	InstallmentPaid    InstallmentStatus = "paid"
)

// Installment - Taksit. Durum geçişi tek yönlüdür: pending -> paid.
type Installment struct {
	ID        uint              `gorm:"primaryKey"`
	SaleID    uint              `gorm:"index;not null"`
	Sale      Sale              `gorm:"foreignKey:SaleID"`
	Amount    decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	DueDate   time.Time         `gorm:"index;not null"`
	Status    InstallmentStatus `gorm:"size:20;not null;default:pending"`
	PaidAt    *time.Time
	Notes     string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
