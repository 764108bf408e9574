package database

import (
	"log"

	"boya-backend/internal/config"
	"boya-backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	// DB_DRIVER=sqlite ile tek dosyalık lokal mod (CGO gerektirmeyen sürücü).
	// Satır kilidi (FOR UPDATE) sadece Postgres'te uygulanır, bkz. ledger paketi.
	switch cfg.DBDriver {
	case "sqlite":
		dsn := cfg.DatabaseDSN
		if dsn == "" {
			dsn = "boya.db"
		}
		DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	default:
		DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Migrate - Tüm tabloları oluşturur/günceller. Testler de aynı şemayı
// kullanabilsin diye ayrı fonksiyon.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Supplier{},
		&models.Customer{},
		&models.RawMaterial{},
		&models.Product{},
		&models.Recipe{},
		&models.RecipeItem{},
		&models.Purchase{},
		&models.PurchaseItem{},
		&models.ProductionRun{},
		&models.Sale{},
		&models.SaleItem{},
		&models.Installment{},
		&models.StockMovement{},
		&models.AuditLog{},
	)
}
