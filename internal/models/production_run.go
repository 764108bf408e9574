package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductionStatus string

const (
	ProductionPending   ProductionStatus = "pending"
	ProductionCompleted ProductionStatus = "completed"
)

// ProductionRun - Üretim partisi. Stok hareketleriyle birlikte atomik
// oluşturulur, sonradan değiştirilmez.
type ProductionRun struct {
	ID          uint             `gorm:"primaryKey"`
	ProductID   uint             `gorm:"index;not null"`
	Product     Product          `gorm:"foreignKey:ProductID"`
	BatchCode   string           `gorm:"size:50;not null"`
	Date        time.Time        `gorm:"index;not null"`
	QtyProduced decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	Status      ProductionStatus `gorm:"size:20;not null;default:completed"`
	CreatedBy   uint             `gorm:"not null"`
	Creator     User             `gorm:"foreignKey:CreatedBy"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
