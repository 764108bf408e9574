package ledger

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"boya-backend/internal/database"
	"boya-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Satır kilitleri ancak gerçek Postgres üzerinde test edilebilir;
// TEST_DATABASE_DSN verilmediğinde atlanır.
//
//	TEST_DATABASE_DSN="host=localhost user=postgres dbname=boya_test ..." go test ./internal/ledger -run Concurrent
func TestConcurrentProductionRunsSingleWinner(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN tanımlı değil, Postgres eşzamanlılık testi atlandı")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Postgres bağlantısı kurulamadı: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrasyon başarısız: %v", err)
	}

	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	user := models.User{Name: "Test", Email: "eszaman-" + suffix + "@test.local", PasswordHash: "x", Role: models.RoleAdmin, IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("kullanıcı oluşturulamadı: %v", err)
	}
	material := models.RawMaterial{
		Name: "Titanyum Dioksit", SKU: "EZ-TIO2-" + suffix, Unit: "kg",
		CostPrice: d(t, "42.50"), CurrentStock: d(t, "500"), ReorderLevel: d(t, "50"),
	}
	if err := db.Create(&material).Error; err != nil {
		t.Fatalf("hammadde oluşturulamadı: %v", err)
	}
	product := models.Product{
		Name: "Beyaz İç Cephe 15L", SKU: "EZ-BIC15-" + suffix,
		SellingPrice: d(t, "850.00"), CurrentStock: d(t, "0"), MinStockLevel: d(t, "10"),
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("ürün oluşturulamadı: %v", err)
	}
	recipe := models.Recipe{ProductID: product.ID, IsActive: true}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("reçete oluşturulamadı: %v", err)
	}
	item := models.RecipeItem{RecipeID: recipe.ID, RawMaterialID: material.ID, QuantityRequired: d(t, "5")}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("reçete kalemi oluşturulamadı: %v", err)
	}
	t.Cleanup(func() {
		db.Where("item_id = ?", material.ID).Delete(&models.StockMovement{})
		db.Where("item_id = ?", product.ID).Delete(&models.StockMovement{})
		db.Where("product_id = ?", product.ID).Delete(&models.ProductionRun{})
		db.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeItem{})
		db.Delete(&recipe)
		db.Delete(&product)
		db.Delete(&material)
		db.Delete(&user)
	})

	// 500 kg stok, parti başına 60*5=300 kg: ancak bir parti sığar.
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ExecuteProductionRun(db, ProductionRunInput{
				ProductID:    product.ID,
				QtyToProduce: d(t, "60"),
				CreatedBy:    user.ID,
			})
		}(i)
	}
	wg.Wait()

	var succeeded, insufficient int
	for _, err := range errs {
		var stockErr *InsufficientStockError
		switch {
		case err == nil:
			succeeded++
		case errors.As(err, &stockErr):
			insufficient++
		default:
			t.Fatalf("beklenmeyen hata: %v", err)
		}
	}
	if succeeded != 1 || insufficient != 1 {
		t.Fatalf("tam bir parti başarılı olmalıydı: başarılı=%d yetersiz=%d", succeeded, insufficient)
	}

	var reloaded models.RawMaterial
	if err := db.First(&reloaded, "id = ?", material.ID).Error; err != nil {
		t.Fatalf("hammadde okunamadı: %v", err)
	}
	assertDecimalEqual(t, d(t, "200"), reloaded.CurrentStock, "kalan hammadde")

	var reloadedProduct models.Product
	if err := db.First(&reloadedProduct, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("ürün okunamadı: %v", err)
	}
	assertDecimalEqual(t, d(t, "60"), reloadedProduct.CurrentStock, "ürün stoğu")
}

// Reçete satırı kilitli olmadan iki eşzamanlı düzenleme read-committed
// altında iç içe geçip iki kalem setinin birleşimini commit edebilir;
// kilitle birlikte sonuç her zaman setlerden tam olarak biridir.
func TestConcurrentRecipeReplacesSerialize(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN tanımlı değil, Postgres eşzamanlılık testi atlandı")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Postgres bağlantısı kurulamadı: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrasyon başarısız: %v", err)
	}

	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	tio2 := models.RawMaterial{
		Name: "Titanyum Dioksit", SKU: "EZ-R-TIO2-" + suffix, Unit: "kg",
		CostPrice: d(t, "42.50"), CurrentStock: d(t, "100"), ReorderLevel: d(t, "50"),
	}
	if err := db.Create(&tio2).Error; err != nil {
		t.Fatalf("hammadde oluşturulamadı: %v", err)
	}
	binder := models.RawMaterial{
		Name: "Akrilik Bağlayıcı", SKU: "EZ-R-AKRB-" + suffix, Unit: "kg",
		CostPrice: d(t, "18.00"), CurrentStock: d(t, "100"), ReorderLevel: d(t, "50"),
	}
	if err := db.Create(&binder).Error; err != nil {
		t.Fatalf("hammadde oluşturulamadı: %v", err)
	}
	product := models.Product{
		Name: "Beyaz İç Cephe 15L", SKU: "EZ-R-BIC15-" + suffix,
		SellingPrice: d(t, "850.00"), CurrentStock: d(t, "0"), MinStockLevel: d(t, "10"),
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("ürün oluşturulamadı: %v", err)
	}
	recipe := models.Recipe{ProductID: product.ID, IsActive: true}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("reçete oluşturulamadı: %v", err)
	}
	t.Cleanup(func() {
		db.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeItem{})
		db.Delete(&recipe)
		db.Delete(&product)
		db.Delete(&binder)
		db.Delete(&tio2)
	})

	sets := [][]RecipeItemInput{
		{{RawMaterialID: tio2.ID, QuantityRequired: d(t, "5")}},
		{{RawMaterialID: binder.ID, QuantityRequired: d(t, "2")}},
	}
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range sets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = ReplaceRecipeItems(db, recipe.ID, sets[i])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			t.Fatalf("beklenmeyen hata: %v", err)
		}
	}

	// Sonuç iki setten tam olarak biri olmalı, birleşimi değil
	var items []models.RecipeItem
	if err := db.Where("recipe_id = ?", recipe.ID).Find(&items).Error; err != nil {
		t.Fatalf("kalemler okunamadı: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("tek kalem bekleniyordu, %d var: %+v", len(items), items)
	}
	if items[0].RawMaterialID != tio2.ID && items[0].RawMaterialID != binder.ID {
		t.Errorf("kalem iki setten birine ait olmalı: %+v", items[0])
	}
}
