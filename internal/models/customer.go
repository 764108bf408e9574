package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CustomerType string

const (
	CustomerRetail    CustomerType = "retail"
	CustomerWholesale CustomerType = "wholesale"
)

type Customer struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:255;not null"`
	Type        CustomerType    `gorm:"size:20;not null;default:retail"`
	Phone       string          `gorm:"size:20"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
