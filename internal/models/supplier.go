package models

import "time"

type Supplier struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:255;not null"`
	ContactPerson string `gorm:"size:100"`
	Phone         string `gorm:"size:20"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
