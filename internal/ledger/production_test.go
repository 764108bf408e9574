package ledger

import (
	"errors"
	"strings"
	"testing"

	"boya-backend/internal/models"
)

// 500 kg TiO2 ile, birim başına 5 kg isteyen reçeteden 101 birim üretilemez;
// 100 birim üretilir ve stok tam 0'a iner.
func TestExecuteProductionRunInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	tio2 := seedMaterial(t, db, "Titanyum Dioksit", "HM-TIO2", "kg", "500")
	product := seedProduct(t, db, "Beyaz İç Cephe 15L", "PR-BIC15", "850.00", "0")
	seedRecipe(t, db, product.ID, recipeItemSpec{tio2.ID, "5"})

	_, err := ExecuteProductionRun(db, ProductionRunInput{
		ProductID:    product.ID,
		QtyToProduce: d(t, "101"),
		CreatedBy:    user.ID,
	})

	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("InsufficientStockError bekleniyordu, gelen: %v", err)
	}
	assertDecimalEqual(t, d(t, "505"), insufficient.Required, "gereken miktar")
	assertDecimalEqual(t, d(t, "500"), insufficient.Available, "mevcut miktar")

	// Hiçbir şey değişmemiş olmalı
	assertDecimalEqual(t, d(t, "500"), reloadMaterial(t, db, tio2.ID).CurrentStock, "hammadde stoğu")
	assertDecimalEqual(t, d(t, "0"), reloadProduct(t, db, product.ID).CurrentStock, "ürün stoğu")
	var runCount int64
	db.Model(&models.ProductionRun{}).Count(&runCount)
	if runCount != 0 {
		t.Errorf("üretim kaydı yazılmamalıydı, %d kayıt var", runCount)
	}
	if n := countMovements(t, db); n != 0 {
		t.Errorf("stok hareketi yazılmamalıydı, %d hareket var", n)
	}
}

func TestExecuteProductionRunSuccess(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	tio2 := seedMaterial(t, db, "Titanyum Dioksit", "HM-TIO2", "kg", "500")
	product := seedProduct(t, db, "Beyaz İç Cephe 15L", "PR-BIC15", "850.00", "0")
	seedRecipe(t, db, product.ID, recipeItemSpec{tio2.ID, "5"})

	run, err := ExecuteProductionRun(db, ProductionRunInput{
		ProductID:    product.ID,
		QtyToProduce: d(t, "100"),
		CreatedBy:    user.ID,
	})
	if err != nil {
		t.Fatalf("üretim başarısız: %v", err)
	}

	if run.Status != models.ProductionCompleted {
		t.Errorf("durum completed olmalıydı: %s", run.Status)
	}
	if !strings.HasPrefix(run.BatchCode, "BATCH-") || len(run.BatchCode) != len("BATCH-")+6 {
		t.Errorf("batch kodu formatı beklenmedik: %s", run.BatchCode)
	}
	assertDecimalEqual(t, d(t, "0"), reloadMaterial(t, db, tio2.ID).CurrentStock, "hammadde stoğu")
	assertDecimalEqual(t, d(t, "100"), reloadProduct(t, db, product.ID).CurrentStock, "ürün stoğu")

	// Hareketler: hammadde için -500, ürün için +100, ikisi de üretime referanslı
	var movements []models.StockMovement
	db.Order("id").Find(&movements)
	if len(movements) != 2 {
		t.Fatalf("2 hareket bekleniyordu, %d var", len(movements))
	}
	assertDecimalEqual(t, d(t, "-500"), movements[0].Delta, "hammadde hareketi")
	assertDecimalEqual(t, d(t, "100"), movements[1].Delta, "ürün hareketi")
	for _, m := range movements {
		if m.Reason != models.MovementProduction {
			t.Errorf("hareket nedeni production olmalıydı: %s", m.Reason)
		}
		if m.ReferenceID == nil || *m.ReferenceID != run.ID {
			t.Errorf("hareket üretim kaydına referans vermeli")
		}
	}
}

func TestExecuteProductionRunExplicitBatchCode(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	tio2 := seedMaterial(t, db, "Titanyum Dioksit", "HM-TIO2", "kg", "100")
	product := seedProduct(t, db, "Beyaz İç Cephe 15L", "PR-BIC15", "850.00", "0")
	seedRecipe(t, db, product.ID, recipeItemSpec{tio2.ID, "5"})

	run, err := ExecuteProductionRun(db, ProductionRunInput{
		ProductID:    product.ID,
		QtyToProduce: d(t, "10"),
		BatchCode:    "PARTI-2025-07",
		CreatedBy:    user.ID,
	})
	if err != nil {
		t.Fatalf("üretim başarısız: %v", err)
	}
	if run.BatchCode != "PARTI-2025-07" {
		t.Errorf("verilen batch kodu korunmalıydı: %s", run.BatchCode)
	}
}

// İki hammaddeli reçetede ikincisi yetersizse ilki de düşülmemeli.
func TestExecuteProductionRunAllOrNothing(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	tio2 := seedMaterial(t, db, "Titanyum Dioksit", "HM-TIO2", "kg", "1000")
	binder := seedMaterial(t, db, "Akrilik Bağlayıcı", "HM-AKRB", "kg", "10")
	product := seedProduct(t, db, "Beyaz İç Cephe 15L", "PR-BIC15", "850.00", "0")
	seedRecipe(t, db, product.ID,
		recipeItemSpec{tio2.ID, "5"},
		recipeItemSpec{binder.ID, "2"},
	)

	_, err := ExecuteProductionRun(db, ProductionRunInput{
		ProductID:    product.ID,
		QtyToProduce: d(t, "20"), // 100 kg TiO2 yeter, 40 kg bağlayıcı yetmez
		CreatedBy:    user.ID,
	})

	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("InsufficientStockError bekleniyordu, gelen: %v", err)
	}
	if insufficient.ItemID != binder.ID {
		t.Errorf("eksik kalem bağlayıcı olmalıydı")
	}
	assertDecimalEqual(t, d(t, "1000"), reloadMaterial(t, db, tio2.ID).CurrentStock, "TiO2 stoğu")
	assertDecimalEqual(t, d(t, "10"), reloadMaterial(t, db, binder.ID).CurrentStock, "bağlayıcı stoğu")
	if n := countMovements(t, db); n != 0 {
		t.Errorf("stok hareketi yazılmamalıydı, %d hareket var", n)
	}
}

func TestExecuteProductionRunNoRecipe(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Beyaz İç Cephe 15L", "PR-BIC15", "850.00", "0")

	_, err := ExecuteProductionRun(db, ProductionRunInput{
		ProductID:    product.ID,
		QtyToProduce: d(t, "10"),
		CreatedBy:    user.ID,
	})
	if !errors.Is(err, ErrNoActiveRecipe) {
		t.Fatalf("ErrNoActiveRecipe bekleniyordu, gelen: %v", err)
	}
}

func TestExecuteProductionRunValidation(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	product := seedProduct(t, db, "Beyaz İç Cephe 15L", "PR-BIC15", "850.00", "0")

	var invalid *ValidationError

	_, err := ExecuteProductionRun(db, ProductionRunInput{
		ProductID:    product.ID,
		QtyToProduce: d(t, "0"),
		CreatedBy:    user.ID,
	})
	if !errors.As(err, &invalid) {
		t.Errorf("sıfır miktar için ValidationError bekleniyordu, gelen: %v", err)
	}

	_, err = ExecuteProductionRun(db, ProductionRunInput{
		QtyToProduce: d(t, "10"),
		CreatedBy:    user.ID,
	})
	if !errors.As(err, &invalid) {
		t.Errorf("eksik product_id için ValidationError bekleniyordu, gelen: %v", err)
	}
}

func TestExecuteProductionRunUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)

	_, err := ExecuteProductionRun(db, ProductionRunInput{
		ProductID:    9999,
		QtyToProduce: d(t, "10"),
		CreatedBy:    user.ID,
	})
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("NotFoundError bekleniyordu, gelen: %v", err)
	}
}

// Eski kayıtlarda aynı hammadde reçetede iki satır olabilir; ihtiyaçlar tek
// satırda toplanmalı, stok toplam miktar kadar BİR kez düşmeli.
func TestExecuteProductionRunDuplicateRecipeLines(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	tio2 := seedMaterial(t, db, "Titanyum Dioksit", "HM-TIO2", "kg", "50")
	paint := seedProduct(t, db, "Beyaz İç Cephe 15L", "UR-BIC15", "850.00", "0")
	seedRecipe(t, db, paint.ID,
		recipeItemSpec{materialID: tio2.ID, qty: "2"},
		recipeItemSpec{materialID: tio2.ID, qty: "3"},
	)

	run, err := ExecuteProductionRun(db, ProductionRunInput{
		ProductID:    paint.ID,
		QtyToProduce: d(t, "10"),
		CreatedBy:    user.ID,
	})
	if err != nil {
		t.Fatalf("üretim başarısız: %v", err)
	}

	// (2+3) * 10 = 50, stok tam sıfırlanmalı
	assertDecimalEqual(t, d(t, "0"), reloadMaterial(t, db, tio2.ID).CurrentStock, "hammadde stoğu")
	assertDecimalEqual(t, d(t, "10"), reloadProduct(t, db, paint.ID).CurrentStock, "ürün stoğu")

	var movements []models.StockMovement
	db.Where("item_kind = ?", models.StockItemRawMaterial).Find(&movements)
	if len(movements) != 1 {
		t.Fatalf("hammadde için tek hareket bekleniyordu, %d var", len(movements))
	}
	assertDecimalEqual(t, d(t, "-50"), movements[0].Delta, "hareket deltası")
	if movements[0].ReferenceID == nil || *movements[0].ReferenceID != run.ID {
		t.Errorf("hareket üretim kaydına referans vermeli")
	}

	// Toplam 50 gerekirken 11 parti sığmaz
	_, err = ExecuteProductionRun(db, ProductionRunInput{
		ProductID:    paint.ID,
		QtyToProduce: d(t, "1"),
		CreatedBy:    user.ID,
	})
	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("tükenmiş stokta InsufficientStockError bekleniyordu, gelen: %v", err)
	}
	assertDecimalEqual(t, d(t, "5"), insufficient.Required, "gereken")
	assertDecimalEqual(t, d(t, "0"), insufficient.Available, "mevcut")
}
