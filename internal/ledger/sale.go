package ledger

import (
	"errors"
	"time"

	"boya-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleItemInput - Satış kalemi girdisi. Fiyat gönderilmez; satış anındaki
// selling_price kaleme kopyalanır.
type SaleItemInput struct {
	ProductID uint            `json:"product_id"`
	Qty       decimal.Decimal `json:"qty"`
}

type InstallmentInput struct {
	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"due_date"`
}

type SaleInput struct {
	CustomerID    uint                 `json:"customer_id"`
	PaymentMethod string               `json:"payment_method"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	DueDate       *time.Time           `json:"due_date"`
	Items         []SaleItemInput      `json:"items"`
	Installments  []InstallmentInput   `json:"installments"`
	CreatedBy     uint                 `json:"-"`
}

func (in *SaleInput) validate() error {
	if in.CustomerID == 0 {
		return validationErrf("customer_id zorunlu")
	}
	if in.PaymentMethod == "" {
		return validationErrf("payment_method zorunlu")
	}
	switch in.PaymentStatus {
	case models.PaymentPaid, models.PaymentCredit, models.PaymentPartial:
	default:
		return validationErrf("payment_status paid/credit/partial olmalı")
	}
	if len(in.Items) == 0 {
		return validationErrf("satışta en az bir kalem olmalı")
	}
	seen := make(map[uint]bool, len(in.Items))
	for _, item := range in.Items {
		if item.ProductID == 0 {
			return validationErrf("kalemlerde product_id zorunlu")
		}
		if item.Qty.LessThanOrEqual(decimal.Zero) {
			return validationErrf("kalem miktarı 0'dan büyük olmalı (ürün ID: %d)", item.ProductID)
		}
		// Aynı ürün iki kalemde gelirse ikinci düşüm ilkini ezer; tek kalemde birleştirilmeli
		if seen[item.ProductID] {
			return validationErrf("aynı ürün birden fazla kalemde yer alamaz (ürün ID: %d)", item.ProductID)
		}
		seen[item.ProductID] = true
	}
	for _, inst := range in.Installments {
		if inst.Amount.LessThanOrEqual(decimal.Zero) {
			return validationErrf("taksit tutarı 0'dan büyük olmalı")
		}
		if inst.DueDate.IsZero() {
			return validationErrf("taksitlerde due_date zorunlu")
		}
	}
	return nil
}

// CreateSale - Satışı kalemleri ve taksitleriyle tek transaction içinde
// oluşturur. Önce TÜM ürün satırları kilitlenip stok yeterliliği kontrol
// edilir ve fiyatlar o anki selling_price'tan sabitlenir; hiçbir satır
// yazılmadan önce bütün kontroller biter. Stok düşümü en son yapılır.
// Herhangi bir eksikte InsufficientStock ile her şey geri alınır.
//
// Taksit kuralı (kaynak davranışı): payment_status=credit olup due_date
// verilmiş ve taksit listesi boşsa, tutarın tamamı için tek taksit açılır.
// Verilen taksitlerin toplamının satış toplamına eşitliği DOĞRULANMAZ.
func CreateSale(db *gorm.DB, in SaleInput) (*models.Sale, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var customer models.Customer
	if err := tx.First(&customer, "id = ?", in.CustomerID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "Müşteri", ID: in.CustomerID}
		}
		return nil, err
	}

	// 1. Ürünleri kilitle, stok kontrolü yap, toplamları hesapla
	totalAmount := decimal.Zero
	products := make([]models.Product, len(in.Items))
	saleItems := make([]models.SaleItem, len(in.Items))
	for i, item := range in.Items {
		if err := lockForUpdate(tx).First(&products[i], "id = ?", item.ProductID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Entity: "Ürün", ID: item.ProductID}
			}
			return nil, err
		}

		if products[i].CurrentStock.LessThan(item.Qty) {
			tx.Rollback()
			return nil, &InsufficientStockError{
				Kind:      models.StockItemProduct,
				ItemID:    products[i].ID,
				Name:      products[i].Name,
				Required:  item.Qty,
				Available: products[i].CurrentStock,
			}
		}

		subtotal := products[i].SellingPrice.Mul(item.Qty)
		totalAmount = totalAmount.Add(subtotal)

		saleItems[i] = models.SaleItem{
			ProductID: products[i].ID,
			Qty:       item.Qty,
			UnitPrice: products[i].SellingPrice, // fiyat burada sabitlenir
			Subtotal:  subtotal,
		}
	}

	// 2. Satışı oluştur
	balanceDue := decimal.Zero
	if in.PaymentStatus == models.PaymentCredit || in.PaymentStatus == models.PaymentPartial {
		balanceDue = totalAmount
	}

	sale := models.Sale{
		CustomerID:    in.CustomerID,
		InvoiceNo:     randomCode("INV-", 8),
		Date:          time.Now(),
		TotalAmount:   totalAmount,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: in.PaymentStatus,
		DueDate:       in.DueDate,
		BalanceDue:    balanceDue,
		CreatedBy:     in.CreatedBy,
	}
	if err := tx.Create(&sale).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// 3. Taksitler
	if len(in.Installments) > 0 {
		for _, inst := range in.Installments {
			installment := models.Installment{
				SaleID:  sale.ID,
				Amount:  inst.Amount,
				DueDate: inst.DueDate,
				Status:  models.InstallmentPending,
			}
			if err := tx.Create(&installment).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	} else if in.PaymentStatus == models.PaymentCredit && in.DueDate != nil {
		// Taksit verilmemişse tutarın tamamı için tek taksit
		installment := models.Installment{
			SaleID:  sale.ID,
			Amount:  totalAmount,
			DueDate: *in.DueDate,
			Status:  models.InstallmentPending,
		}
		if err := tx.Create(&installment).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// 4. Kalemleri yaz ve stok düş (en son)
	for i := range saleItems {
		saleItems[i].SaleID = sale.ID
		if err := tx.Create(&saleItems[i]).Error; err != nil {
			tx.Rollback()
			return nil, err
		}

		newStock := products[i].CurrentStock.Sub(saleItems[i].Qty)
		if err := tx.Model(&products[i]).Update("current_stock", newStock).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := appendMovement(tx, models.StockItemProduct, products[i].ID, saleItems[i].Qty.Neg(), models.MovementSale, &sale.ID, in.CreatedBy); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// Yanıt için ilişkileri yükle
	if err := db.Preload("Items").Preload("Installments").Preload("Customer").First(&sale, sale.ID).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}
