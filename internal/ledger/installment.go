package ledger

import (
	"errors"
	"time"

	"boya-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PayInstallment - Taksiti öder ve satışın bakiyesini günceller.
// balance_due SADECE burada mutasyona uğrar; satışın ömrü boyunca
// monoton azalır. Ödenmiş taksit için ErrAlreadyPaid döner (replay
// koruması). Akış: taksit paid işaretlenir -> satış satırı kilitlenip
// bakiye taksit tutarı kadar düşülür -> bakiye <= 0 ise 0'a sabitlenir
// ve payment_status=paid, değilse partial olur. Tek transaction.
func PayInstallment(db *gorm.DB, installmentID uint, notes string, userID uint) (*models.Installment, error) {
	if installmentID == 0 {
		return nil, validationErrf("taksit ID zorunlu")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var installment models.Installment
	if err := lockForUpdate(tx).First(&installment, "id = ?", installmentID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Taksit", ID: installmentID}
		}
		return nil, err
	}

	if installment.Status == models.InstallmentPaid {
		tx.Rollback()
		return nil, ErrAlreadyPaid
	}

	now := time.Now()
	updates := map[string]any{
		"status":  models.InstallmentPaid,
		"paid_at": now,
		"notes":   notes,
	}
	if err := tx.Model(&installment).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	var sale models.Sale
	if err := lockForUpdate(tx).First(&sale, "id = ?", installment.SaleID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	newBalance := sale.BalanceDue.Sub(installment.Amount)
	saleUpdates := map[string]any{}
	if newBalance.LessThanOrEqual(decimal.Zero) {
		// Bakiye kapandı; fazla ödeme 0'a sabitlenir
		saleUpdates["balance_due"] = decimal.Zero
		saleUpdates["payment_status"] = models.PaymentPaid
	} else {
		saleUpdates["balance_due"] = newBalance
		saleUpdates["payment_status"] = models.PaymentPartial
	}
	if err := tx.Model(&sale).Updates(saleUpdates).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := db.Preload("Sale.Customer").First(&installment, installment.ID).Error; err != nil {
		return nil, err
	}
	return &installment, nil
}
