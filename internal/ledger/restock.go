package ledger

import (
	"errors"
	"time"

	"boya-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RestockItemInput struct {
	RawMaterialID uint            `json:"raw_material_id"`
	Qty           decimal.Decimal `json:"qty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

type RestockInput struct {
	SupplierID uint               `json:"supplier_id"`
	Date       time.Time          `json:"date"`
	InvoiceNo  string             `json:"invoice_no"`
	Items      []RestockItemInput `json:"items"`
	CreatedBy  uint               `json:"-"`
}

// Restock - Tedarikçi alımı: Purchase + kalemleri yazılır, her hammaddenin
// stoğu artırılır ve cost_price son alım fiyatıyla GÜNCELLENİR (ağırlıklı
// ortalama değil, son-alım-fiyatı maliyetlendirmesi). Tek transaction.
func Restock(db *gorm.DB, in RestockInput) (*models.Purchase, error) {
	if in.SupplierID == 0 {
		return nil, validationErrf("supplier_id zorunlu")
	}
	if in.Date.IsZero() {
		return nil, validationErrf("date zorunlu")
	}
	if len(in.Items) == 0 {
		return nil, validationErrf("alımda en az bir kalem olmalı")
	}
	for _, item := range in.Items {
		if item.RawMaterialID == 0 {
			return nil, validationErrf("kalemlerde raw_material_id zorunlu")
		}
		if item.Qty.LessThanOrEqual(decimal.Zero) {
			return nil, validationErrf("kalem miktarı 0'dan büyük olmalı (hammadde ID: %d)", item.RawMaterialID)
		}
		if item.UnitPrice.IsNegative() {
			return nil, validationErrf("birim fiyat negatif olamaz (hammadde ID: %d)", item.RawMaterialID)
		}
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var supplier models.Supplier
	if err := tx.First(&supplier, "id = ?", in.SupplierID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Tedarikçi", ID: in.SupplierID}
		}
		return nil, err
	}

	totalAmount := decimal.Zero
	for _, item := range in.Items {
		totalAmount = totalAmount.Add(item.Qty.Mul(item.UnitPrice))
	}

	purchase := models.Purchase{
		SupplierID:  in.SupplierID,
		InvoiceNo:   in.InvoiceNo,
		Date:        in.Date,
		TotalAmount: totalAmount,
		CreatedBy:   in.CreatedBy,
	}
	if err := tx.Create(&purchase).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, item := range in.Items {
		purchaseItem := models.PurchaseItem{
			PurchaseID:    purchase.ID,
			RawMaterialID: item.RawMaterialID,
			Qty:           item.Qty,
			UnitPrice:     item.UnitPrice,
			Subtotal:      item.Qty.Mul(item.UnitPrice),
		}
		if err := tx.Create(&purchaseItem).Error; err != nil {
			tx.Rollback()
			return nil, err
		}

		var material models.RawMaterial
		if err := lockForUpdate(tx).First(&material, "id = ?", item.RawMaterialID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Entity: "Hammadde", ID: item.RawMaterialID}
			}
			return nil, err
		}

		updates := map[string]any{
			"current_stock": material.CurrentStock.Add(item.Qty),
			"cost_price":    item.UnitPrice, // son alım fiyatı
		}
		if err := tx.Model(&material).Updates(updates).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := appendMovement(tx, models.StockItemRawMaterial, material.ID, item.Qty, models.MovementRestock, &purchase.ID, in.CreatedBy); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := db.Preload("Items.RawMaterial").Preload("Supplier").First(&purchase, purchase.ID).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}
