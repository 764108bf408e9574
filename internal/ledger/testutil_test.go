package ledger

import (
	"testing"
	"time"

	"boya-backend/internal/database"
	"boya-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}
	// :memory: bağlantı başına ayrı veritabanı demek; tek bağlantıya sabitle
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB alınamadı: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate hatası: %v", err)
	}
	return db
}

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("geçersiz decimal %q: %v", s, err)
	}
	return v
}

func seedUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{
		Name:         "Test Kullanıcı",
		Email:        "test@boya.local",
		PasswordHash: "hash",
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("kullanıcı oluşturulamadı: %v", err)
	}
	return user
}

func seedMaterial(t *testing.T, db *gorm.DB, name, sku, unit, stock string) models.RawMaterial {
	t.Helper()
	material := models.RawMaterial{
		Name:         name,
		SKU:          sku,
		Unit:         unit,
		CostPrice:    d(t, "10.00"),
		CurrentStock: d(t, stock),
		ReorderLevel: d(t, "50"),
	}
	if err := db.Create(&material).Error; err != nil {
		t.Fatalf("hammadde oluşturulamadı: %v", err)
	}
	return material
}

func seedProduct(t *testing.T, db *gorm.DB, name, sku, price, stock string) models.Product {
	t.Helper()
	product := models.Product{
		Name:          name,
		SKU:           sku,
		SellingPrice:  d(t, price),
		CurrentStock:  d(t, stock),
		MinStockLevel: d(t, "10"),
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("ürün oluşturulamadı: %v", err)
	}
	return product
}

type recipeItemSpec struct {
	materialID uint
	qty        string
}

func seedRecipe(t *testing.T, db *gorm.DB, productID uint, items ...recipeItemSpec) models.Recipe {
	t.Helper()
	recipe := models.Recipe{ProductID: productID, IsActive: true}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("reçete oluşturulamadı: %v", err)
	}
	for _, spec := range items {
		item := models.RecipeItem{
			RecipeID:         recipe.ID,
			RawMaterialID:    spec.materialID,
			QuantityRequired: d(t, spec.qty),
		}
		if err := db.Create(&item).Error; err != nil {
			t.Fatalf("reçete kalemi oluşturulamadı: %v", err)
		}
	}
	return recipe
}

func seedSupplier(t *testing.T, db *gorm.DB, name string) models.Supplier {
	t.Helper()
	supplier := models.Supplier{Name: name, Phone: "05550000000"}
	if err := db.Create(&supplier).Error; err != nil {
		t.Fatalf("tedarikçi oluşturulamadı: %v", err)
	}
	return supplier
}

func seedCustomer(t *testing.T, db *gorm.DB, name string) models.Customer {
	t.Helper()
	customer := models.Customer{
		Name:        name,
		Type:        models.CustomerRetail,
		CreditLimit: decimal.Zero,
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("müşteri oluşturulamadı: %v", err)
	}
	return customer
}

func reloadMaterial(t *testing.T, db *gorm.DB, id uint) models.RawMaterial {
	t.Helper()
	var m models.RawMaterial
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		t.Fatalf("hammadde okunamadı: %v", err)
	}
	return m
}

func reloadProduct(t *testing.T, db *gorm.DB, id uint) models.Product {
	t.Helper()
	var p models.Product
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		t.Fatalf("ürün okunamadı: %v", err)
	}
	return p
}

func reloadSale(t *testing.T, db *gorm.DB, id uint) models.Sale {
	t.Helper()
	var s models.Sale
	if err := db.Preload("Items").Preload("Installments").First(&s, "id = ?", id).Error; err != nil {
		t.Fatalf("satış okunamadı: %v", err)
	}
	return s
}

func countMovements(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.StockMovement{}).Count(&count).Error; err != nil {
		t.Fatalf("hareketler sayılamadı: %v", err)
	}
	return count
}

func assertDecimalEqual(t *testing.T, want, got decimal.Decimal, label string) {
	t.Helper()
	if !want.Equal(got) {
		t.Errorf("%s: beklenen %s, gelen %s", label, want.String(), got.String())
	}
}

func daysFromNow(n int) time.Time {
	return time.Now().AddDate(0, 0, n)
}
