package ledger

import (
	"errors"
	"time"

	"boya-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductionRunInput - Üretim emri girdisi.
type ProductionRunInput struct {
	ProductID    uint            `json:"product_id"`
	QtyToProduce decimal.Decimal `json:"qty_to_produce"`
	BatchCode    string          `json:"batch_code"` // boşsa otomatik üretilir
	CreatedBy    uint            `json:"-"`
}

// ExecuteProductionRun - Reçeteyi açar, gereken TÜM hammadde satırlarını
// kilitler ve yeterliliği doğrular; ancak hepsi yeterliyse stok düşer.
// İlk eksikte işlem InsufficientStock ile iptal edilir ve hiçbir stok
// değişmez. Başarıda hammaddeler düşülür, ürün stoğu artar ve completed
// durumunda bir ProductionRun kaydı yazılır; hepsi tek transaction.
func ExecuteProductionRun(db *gorm.DB, in ProductionRunInput) (*models.ProductionRun, error) {
	if in.ProductID == 0 {
		return nil, validationErrf("product_id zorunlu")
	}
	if in.QtyToProduce.LessThanOrEqual(decimal.Zero) {
		return nil, validationErrf("üretim miktarı 0'dan büyük olmalı")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var product models.Product
	if err := lockForUpdate(tx).First(&product, "id = ?", in.ProductID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Ürün", ID: in.ProductID}
		}
		return nil, err
	}

	requirements, err := Resolve(tx, in.ProductID, in.QtyToProduce)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// 1. geçiş: tüm hammadde satırlarını kilitle ve yeterliliği kontrol et.
	// Mutasyon başlamadan bütün kilitler alınmış olur; yarım düşüm kalmaz.
	materials := make([]models.RawMaterial, len(requirements))
	for i, req := range requirements {
		if err := lockForUpdate(tx).First(&materials[i], "id = ?", req.RawMaterialID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Entity: "Hammadde", ID: req.RawMaterialID}
			}
			return nil, err
		}
		if materials[i].CurrentStock.LessThan(req.Required) {
			tx.Rollback()
			return nil, &InsufficientStockError{
				Kind:      models.StockItemRawMaterial,
				ItemID:    materials[i].ID,
				Name:      materials[i].Name,
				Unit:      materials[i].Unit,
				Required:  req.Required,
				Available: materials[i].CurrentStock,
			}
		}
	}

	// Üretim kaydı, hareketlerin referansı olsun diye mutasyonlardan önce
	// yazılır; hata olursa zaten hepsi geri alınır.
	batchCode := in.BatchCode
	if batchCode == "" {
		batchCode = randomCode("BATCH-", 6)
	}
	run := models.ProductionRun{
		ProductID:   in.ProductID,
		BatchCode:   batchCode,
		Date:        time.Now(),
		QtyProduced: in.QtyToProduce,
		Status:      models.ProductionCompleted,
		CreatedBy:   in.CreatedBy,
	}
	if err := tx.Create(&run).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// 2. geçiş: hammaddeleri düş, hareketleri yaz.
	for i, req := range requirements {
		newStock := materials[i].CurrentStock.Sub(req.Required)
		if err := tx.Model(&materials[i]).Update("current_stock", newStock).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := appendMovement(tx, models.StockItemRawMaterial, materials[i].ID, req.Required.Neg(), models.MovementProduction, &run.ID, in.CreatedBy); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// Mamul stoğunu artır.
	newProductStock := product.CurrentStock.Add(in.QtyToProduce)
	if err := tx.Model(&product).Update("current_stock", newProductStock).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := appendMovement(tx, models.StockItemProduct, product.ID, in.QtyToProduce, models.MovementProduction, &run.ID, in.CreatedBy); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	run.Product = product
	run.Product.CurrentStock = newProductStock
	return &run, nil
}
