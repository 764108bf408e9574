package ledger

import (
	"errors"
	"strings"
	"testing"

	"boya-backend/internal/models"

	"github.com/shopspring/decimal"
)

func TestCreateSalePaid(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	customer := seedCustomer(t, db, "Usta Boya Market")
	product := seedProduct(t, db, "Beyaz İç Cephe 15L", "PR-BIC15", "850.00", "20")

	sale, err := CreateSale(db, SaleInput{
		CustomerID:    customer.ID,
		PaymentMethod: "cash",
		PaymentStatus: models.PaymentPaid,
		Items: []SaleItemInput{
			{ProductID: product.ID, Qty: d(t, "3")},
		},
		CreatedBy: user.ID,
	})
	if err != nil {
		t.Fatalf("satış başarısız: %v", err)
	}

	if !strings.HasPrefix(sale.InvoiceNo, "INV-") || len(sale.InvoiceNo) != len("INV-")+8 {
		t.Errorf("fatura no formatı beklenmedik: %s", sale.InvoiceNo)
	}
	assertDecimalEqual(t, d(t, "2550.00"), sale.TotalAmount, "satış toplamı")
	assertDecimalEqual(t, decimal.Zero, sale.BalanceDue, "balance_due")
	assertDecimalEqual(t, d(t, "17"), reloadProduct(t, db, product.ID).CurrentStock, "ürün stoğu")

	if len(sale.Items) != 1 {
		t.Fatalf("1 kalem bekleniyordu, %d var", len(sale.Items))
	}
	assertDecimalEqual(t, d(t, "850.00"), sale.Items[0].UnitPrice, "kalem fiyatı")
	if len(sale.Installments) != 0 {
		t.Errorf("peşin satışta taksit olmamalı, %d var", len(sale.Installments))
	}
}

// Kalem fiyatı satış anında sabitlenir; ürün fiyatı sonradan değişse bile
// kalem eski fiyatta kalır.
func TestCreateSalePriceSnapshot(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	customer := seedCustomer(t, db, "Usta Boya Market")
	product := seedProduct(t, db, "Beyaz İç Cephe 15L", "PR-BIC15", "850.00", "20")

	sale, err := CreateSale(db, SaleInput{
		CustomerID:    customer.ID,
		PaymentMethod: "cash",
		PaymentStatus: models.PaymentPaid,
		Items:         []SaleItemInput{{ProductID: product.ID, Qty: d(t, "1")}},
		CreatedBy:     user.ID,
	})
	if err != nil {
		t.Fatalf("satış başarısız: %v", err)
	}

	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("selling_price", d(t, "999.00")).Error; err != nil {
		t.Fatalf("fiyat güncellenemedi: %v", err)
	}

	reloaded := reloadSale(t, db, sale.ID)
	assertDecimalEqual(t, d(t, "850.00"), reloaded.Items[0].UnitPrice, "kalem fiyatı")
	assertDecimalEqual(t, d(t, "850.00"), reloaded.TotalAmount, "satış toplamı")
}

// 87.00'lik vadeli satış: due_date verilmiş ve taksit listesi boşsa tutarın
// tamamı için tek taksit açılır.
func TestCreateSaleCreditAutoInstallment(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	customer := seedCustomer(t, db, "Usta Boya Market")
	product := seedProduct(t, db, "Astar 1L", "PR-AST1", "87.00", "10")

	due := daysFromNow(30)
	sale, err := CreateSale(db, SaleInput{
		CustomerID:    customer.ID,
		PaymentMethod: "transfer",
		PaymentStatus: models.PaymentCredit,
		DueDate:       &due,
		Items:         []SaleItemInput{{ProductID: product.ID, Qty: d(t, "1")}},
		CreatedBy:     user.ID,
	})
	if err != nil {
		t.Fatalf("satış başarısız: %v", err)
	}

	assertDecimalEqual(t, d(t, "87.00"), sale.TotalAmount, "satış toplamı")
	assertDecimalEqual(t, d(t, "87.00"), sale.BalanceDue, "balance_due")
	if len(sale.Installments) != 1 {
		t.Fatalf("1 otomatik taksit bekleniyordu, %d var", len(sale.Installments))
	}
	assertDecimalEqual(t, d(t, "87.00"), sale.Installments[0].Amount, "taksit tutarı")
	if sale.Installments[0].Status != models.InstallmentPending {
		t.Errorf("taksit pending olmalıydı: %s", sale.Installments[0].Status)
	}
}

// Taksit listesi verilmişse otomatik taksit açılmaz, verilenler aynen yazılır.
// Toplam tutarla eşitlik doğrulanmaz.
func TestCreateSaleExplicitInstallments(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	customer := seedCustomer(t, db, "Usta Boya Market")
	product := seedProduct(t, db, "Astar 1L", "PR-AST1", "87.00", "10")

	due := daysFromNow(60)
	sale, err := CreateSale(db, SaleInput{
		CustomerID:    customer.ID,
		PaymentMethod: "transfer",
		PaymentStatus: models.PaymentCredit,
		DueDate:       &due,
		Items:         []SaleItemInput{{ProductID: product.ID, Qty: d(t, "1")}},
		Installments: []InstallmentInput{
			{Amount: d(t, "30.00"), DueDate: daysFromNow(30)},
			{Amount: d(t, "57.00"), DueDate: daysFromNow(60)},
		},
		CreatedBy: user.ID,
	})
	if err != nil {
		t.Fatalf("satış başarısız: %v", err)
	}
	if len(sale.Installments) != 2 {
		t.Fatalf("2 taksit bekleniyordu, %d var", len(sale.Installments))
	}
}

// Vadeli ama due_date'siz ve taksitsiz satışta otomatik taksit açılmaz;
// bakiye yine de toplam kadar kalır.
func TestCreateSaleCreditWithoutDueDate(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	customer := seedCustomer(t, db, "Usta Boya Market")
	product := seedProduct(t, db, "Astar 1L", "PR-AST1", "87.00", "10")

	sale, err := CreateSale(db, SaleInput{
		CustomerID:    customer.ID,
		PaymentMethod: "cash",
		PaymentStatus: models.PaymentCredit,
		Items:         []SaleItemInput{{ProductID: product.ID, Qty: d(t, "1")}},
		CreatedBy:     user.ID,
	})
	if err != nil {
		t.Fatalf("satış başarısız: %v", err)
	}
	if len(sale.Installments) != 0 {
		t.Errorf("taksit açılmamalıydı, %d var", len(sale.Installments))
	}
	assertDecimalEqual(t, d(t, "87.00"), sale.BalanceDue, "balance_due")
}

// Yetersiz stokta hiçbir satır yazılmaz ve stok değişmez.
func TestCreateSaleInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	customer := seedCustomer(t, db, "Usta Boya Market")
	ok := seedProduct(t, db, "Astar 1L", "PR-AST1", "87.00", "10")
	short := seedProduct(t, db, "Beyaz İç Cephe 15L", "PR-BIC15", "850.00", "2")

	_, err := CreateSale(db, SaleInput{
		CustomerID:    customer.ID,
		PaymentMethod: "cash",
		PaymentStatus: models.PaymentPaid,
		Items: []SaleItemInput{
			{ProductID: ok.ID, Qty: d(t, "5")},
			{ProductID: short.ID, Qty: d(t, "3")},
		},
		CreatedBy: user.ID,
	})

	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("InsufficientStockError bekleniyordu, gelen: %v", err)
	}
	if insufficient.ItemID != short.ID {
		t.Errorf("eksik kalem yanlış raporlandı")
	}

	var saleCount, itemCount int64
	db.Model(&models.Sale{}).Count(&saleCount)
	db.Model(&models.SaleItem{}).Count(&itemCount)
	if saleCount != 0 || itemCount != 0 {
		t.Errorf("satış satırı yazılmamalıydı (sale=%d, item=%d)", saleCount, itemCount)
	}
	assertDecimalEqual(t, d(t, "10"), reloadProduct(t, db, ok.ID).CurrentStock, "ilk ürün stoğu")
	assertDecimalEqual(t, d(t, "2"), reloadProduct(t, db, short.ID).CurrentStock, "ikinci ürün stoğu")
	if n := countMovements(t, db); n != 0 {
		t.Errorf("stok hareketi yazılmamalıydı, %d hareket var", n)
	}
}

func TestCreateSaleValidation(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	customer := seedCustomer(t, db, "Usta Boya Market")

	var invalid *ValidationError

	_, err := CreateSale(db, SaleInput{
		CustomerID:    customer.ID,
		PaymentMethod: "cash",
		PaymentStatus: "taksitli",
		Items:         []SaleItemInput{{ProductID: 1, Qty: d(t, "1")}},
		CreatedBy:     user.ID,
	})
	if !errors.As(err, &invalid) {
		t.Errorf("geçersiz payment_status için ValidationError bekleniyordu, gelen: %v", err)
	}

	_, err = CreateSale(db, SaleInput{
		CustomerID:    customer.ID,
		PaymentMethod: "cash",
		PaymentStatus: models.PaymentPaid,
		CreatedBy:     user.ID,
	})
	if !errors.As(err, &invalid) {
		t.Errorf("boş kalem listesi için ValidationError bekleniyordu, gelen: %v", err)
	}
}

// Aynı ürün iki kalemde gelirse ikinci stok güncellemesi ilkini ezer ve
// hareket toplamı current_stock ile tutarsızlaşır; bu yüzden girişte reddedilir.
func TestCreateSaleDuplicateProductLines(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	customer := seedCustomer(t, db, "Usta Boya Market")
	paint := seedProduct(t, db, "Beyaz İç Cephe 15L", "UR-BIC15", "850.00", "5")

	_, err := CreateSale(db, SaleInput{
		CustomerID:    customer.ID,
		PaymentMethod: "cash",
		PaymentStatus: models.PaymentPaid,
		Items: []SaleItemInput{
			{ProductID: paint.ID, Qty: d(t, "4")},
			{ProductID: paint.ID, Qty: d(t, "4")},
		},
		CreatedBy: user.ID,
	})
	var invalid *ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("mükerrer ürün kalemi için ValidationError bekleniyordu, gelen: %v", err)
	}

	var saleCount int64
	db.Model(&models.Sale{}).Count(&saleCount)
	if saleCount != 0 {
		t.Errorf("satış yazılmamalıydı, %d var", saleCount)
	}
	assertDecimalEqual(t, d(t, "5"), reloadProduct(t, db, paint.ID).CurrentStock, "stok değişmemeli")
	if got := countMovements(t, db); got != 0 {
		t.Errorf("hareket yazılmamalıydı, %d var", got)
	}
}

func TestCreateSaleUnknownCustomer(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Astar 1L", "PR-AST1", "87.00", "10")

	_, err := CreateSale(db, SaleInput{
		CustomerID:    9999,
		PaymentMethod: "cash",
		PaymentStatus: models.PaymentPaid,
		Items:         []SaleItemInput{{ProductID: product.ID, Qty: d(t, "1")}},
		CreatedBy:     user.ID,
	})
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("NotFoundError bekleniyordu, gelen: %v", err)
	}
}
