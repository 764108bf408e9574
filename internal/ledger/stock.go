package ledger

import (
	"errors"
	"time"

	"boya-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Snapshot - Bir stok kaleminin o anki durumu (rapor amaçlı, kilitsiz).
type Snapshot struct {
	Kind         models.StockItemKind `json:"kind"`
	ItemID       uint                 `json:"item_id"`
	Name         string               `json:"name"`
	Unit         string               `json:"unit"`
	CurrentStock decimal.Decimal      `json:"current_stock"`
	Threshold    decimal.Decimal      `json:"threshold"` // reorder_level / min_stock_level
	Low          bool                 `json:"low"`
}

// Query - Stok kalemini kilitsiz okur.
func Query(db *gorm.DB, kind models.StockItemKind, itemID uint) (*Snapshot, error) {
	switch kind {
	case models.StockItemRawMaterial:
		var m models.RawMaterial
		if err := db.First(&m, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Entity: "Hammadde", ID: itemID}
			}
			return nil, err
		}
		return &Snapshot{
			Kind:         kind,
			ItemID:       m.ID,
			Name:         m.Name,
			Unit:         m.Unit,
			CurrentStock: m.CurrentStock,
			Threshold:    m.ReorderLevel,
			Low:          m.CurrentStock.LessThan(m.ReorderLevel),
		}, nil
	case models.StockItemProduct:
		var p models.Product
		if err := db.First(&p, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Entity: "Ürün", ID: itemID}
			}
			return nil, err
		}
		return &Snapshot{
			Kind:         kind,
			ItemID:       p.ID,
			Name:         p.Name,
			CurrentStock: p.CurrentStock,
			Threshold:    p.MinStockLevel,
			Low:          p.CurrentStock.LessThan(p.MinStockLevel),
		}, nil
	}
	return nil, validationErrf("geçersiz stok kalemi türü: %s", kind)
}

// Adjust - delta'yı tek bir kalemin current_stock'una uygular. Satır
// kilitlenir, yetersizlik mutasyondan ÖNCE kontrol edilir ve hareket
// kaydı aynı transaction içinde yazılır. Transaction içinden (tx ile)
// çağrılmalıdır.
func Adjust(tx *gorm.DB, kind models.StockItemKind, itemID uint, delta decimal.Decimal, reason models.MovementReason, referenceID *uint, createdBy uint) error {
	switch kind {
	case models.StockItemRawMaterial:
		var m models.RawMaterial
		if err := lockForUpdate(tx).First(&m, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "Hammadde", ID: itemID}
			}
			return err
		}
		newStock := m.CurrentStock.Add(delta)
		if newStock.IsNegative() {
			return &InsufficientStockError{
				Kind:      kind,
				ItemID:    m.ID,
				Name:      m.Name,
				Unit:      m.Unit,
				Required:  delta.Neg(),
				Available: m.CurrentStock,
			}
		}
		if err := tx.Model(&m).Update("current_stock", newStock).Error; err != nil {
			return err
		}
	case models.StockItemProduct:
		var p models.Product
		if err := lockForUpdate(tx).First(&p, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "Ürün", ID: itemID}
			}
			return err
		}
		newStock := p.CurrentStock.Add(delta)
		if newStock.IsNegative() {
			return &InsufficientStockError{
				Kind:      kind,
				ItemID:    p.ID,
				Name:      p.Name,
				Required:  delta.Neg(),
				Available: p.CurrentStock,
			}
		}
		if err := tx.Model(&p).Update("current_stock", newStock).Error; err != nil {
			return err
		}
	default:
		return validationErrf("geçersiz stok kalemi türü: %s", kind)
	}

	return appendMovement(tx, kind, itemID, delta, reason, referenceID, createdBy)
}

// appendMovement - Append-only denetim kaydı. Stok mutasyonuyla aynı
// transaction içinde yazılır ki ikisi birlikte görünsün ya da hiç görünmesin.
func appendMovement(tx *gorm.DB, kind models.StockItemKind, itemID uint, delta decimal.Decimal, reason models.MovementReason, referenceID *uint, createdBy uint) error {
	movement := models.StockMovement{
		ItemKind:    kind,
		ItemID:      itemID,
		Delta:       delta,
		Reason:      reason,
		ReferenceID: referenceID,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now(),
	}
	return tx.Create(&movement).Error
}

// LowStockReport - Eşiğin altına düşen kalemler (salt okunur tarama).
type LowStockReport struct {
	RawMaterials []models.RawMaterial `json:"raw_materials"`
	Products     []models.Product     `json:"products"`
}

// LowStock - Hammaddelerde current_stock < reorder_level, ürünlerde
// current_stock < min_stock_level olanları listeler. Kilit almaz.
func LowStock(db *gorm.DB) (*LowStockReport, error) {
	report := &LowStockReport{}

	if err := db.Where("current_stock < reorder_level").Order("name").Find(&report.RawMaterials).Error; err != nil {
		return nil, err
	}
	if err := db.Where("current_stock < min_stock_level").Order("name").Find(&report.Products).Error; err != nil {
		return nil, err
	}

	return report, nil
}
