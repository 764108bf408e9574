package inventory

import (
	"testing"

	"boya-backend/internal/database"
	"boya-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// matchRawMaterial global database.DB üzerinden çalışır; test için
// bellek içi bir veritabanı bağlanır.
func setupInvoiceTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB alınamadı: %v", err)
	}
	// :memory: bağlantı başına ayrı veritabanı demek; tek bağlantıya sabitle
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrasyon başarısız: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
}

func seedInvoiceMaterial(t *testing.T, name, sku string) models.RawMaterial {
	t.Helper()
	material := models.RawMaterial{
		Name:         name,
		SKU:          sku,
		Unit:         "kg",
		CostPrice:    decimal.RequireFromString("10.00"),
		CurrentStock: decimal.RequireFromString("100"),
		ReorderLevel: decimal.RequireFromString("50"),
	}
	if err := database.DB.Create(&material).Error; err != nil {
		t.Fatalf("hammadde oluşturulamadı: %v", err)
	}
	return material
}

func TestParseTurkishDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.234,56", "1234.56"},
		{"140,00 TL", "140"},
		{"42,50", "42.5"},
		{"250", "250"},
		{"  10.625,00 TL ", "10625"},
	}
	for _, tc := range cases {
		got, err := parseTurkishDecimal(tc.in)
		if err != nil {
			t.Errorf("parseTurkishDecimal(%q) hata verdi: %v", tc.in, err)
			continue
		}
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("parseTurkishDecimal(%q) = %s, beklenen %s", tc.in, got, tc.want)
		}
	}

	if _, err := parseTurkishDecimal("fiyat yok"); err == nil {
		t.Errorf("sayı olmayan girdi için hata bekleniyordu")
	}
}

func TestExtractQtyAndUnit(t *testing.T) {
	qty, unit := extractQtyAndUnit("250 kg")
	if !qty.Equal(decimal.RequireFromString("250")) || unit != "kg" {
		t.Errorf("250 kg -> %s %q", qty, unit)
	}

	qty, unit = extractQtyAndUnit("1.500,5 litre")
	if !qty.Equal(decimal.RequireFromString("1500.5")) || unit != "litre" {
		t.Errorf("1.500,5 litre -> %s %q", qty, unit)
	}

	qty, unit = extractQtyAndUnit("100")
	if !qty.Equal(decimal.RequireFromString("100")) || unit != "" {
		t.Errorf("100 -> %s %q", qty, unit)
	}
}

const sampleInvoiceText = `KİMYA TEDARİK A.Ş.
Fatura No: TDK2025-0042
Fatura Tarihi: 12.07.2025

| Stok Kodu | Hammadde | Birim Fiyat | Miktar | Tutar |
|-----------|----------|-------------|--------|-------|
| HM-TIO2 | Titanyum Dioksit | 42,50 TL | 250 kg | 10.625,00 TL |
| HM-AKRB | Akrilik Bağlayıcı | 18,00 TL | 100 kg | 1.800,00 TL |
Emülsiyonu

Toplam: 12.425,00 TL
KDV: 2.485,00 TL
Genel Toplam: 14.910,00 TL
`

func TestParseInvoiceTable(t *testing.T) {
	items, err := parseInvoiceTable(sampleInvoiceText)
	if err != nil {
		t.Fatalf("tablo parse edilemedi: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("2 kalem bekleniyordu, %d var", len(items))
	}

	first := items[0]
	if first.SKU != "HM-TIO2" || first.MaterialName != "Titanyum Dioksit" {
		t.Errorf("ilk kalem: %+v", first)
	}
	if !first.UnitPrice.Equal(decimal.RequireFromString("42.5")) {
		t.Errorf("birim fiyat: %s", first.UnitPrice)
	}
	if !first.Qty.Equal(decimal.RequireFromString("250")) || first.QtyUnit != "kg" {
		t.Errorf("miktar: %s %s", first.Qty, first.QtyUnit)
	}
	if !first.Subtotal.Equal(decimal.RequireFromString("10625")) {
		t.Errorf("tutar: %s", first.Subtotal)
	}

	// Pipe içermeyen devam satırı önceki kalemin adına eklenir
	second := items[1]
	if second.MaterialName != "Akrilik Bağlayıcı Emülsiyonu" {
		t.Errorf("çok satırlı ad birleştirilmeli: %q", second.MaterialName)
	}
}

func TestParseInvoiceTableNoHeader(t *testing.T) {
	if _, err := parseInvoiceTable("rastgele metin, tablo yok"); err == nil {
		t.Errorf("tablo başlığı yokken hata bekleniyordu")
	}
}

func TestExtractInvoiceMeta(t *testing.T) {
	if got := extractInvoiceDate(sampleInvoiceText); got != "12.07.2025" {
		t.Errorf("fatura tarihi: %q", got)
	}
	if got := extractInvoiceNo(sampleInvoiceText); got != "TDK2025-0042" {
		t.Errorf("fatura no: %q", got)
	}
	if got := extractInvoiceDate("tarih yok"); got != "" {
		t.Errorf("tarih bulunamayınca boş dönmeli: %q", got)
	}
}

func TestMatchRawMaterial(t *testing.T) {
	setupInvoiceTestDB(t)
	tio2 := seedInvoiceMaterial(t, "Titanyum Dioksit", "HM-TIO2")
	binder := seedInvoiceMaterial(t, "Akrilik Bağlayıcı", "HM-AKRB")

	// SKU her zaman önceliklidir, isim farklı olsa bile
	matched, err := matchRawMaterial("Bambaşka Bir İsim", "HM-TIO2")
	if err != nil || matched == nil || matched.ID != tio2.ID {
		t.Errorf("SKU eşleşmesi: %+v, %v", matched, err)
	}

	// Türkçe karakterler normalize edilerek tam isim eşleşmesi
	matched, err = matchRawMaterial("TITANYUM DIOKSIT", "")
	if err != nil || matched == nil || matched.ID != tio2.ID {
		t.Errorf("normalize isim eşleşmesi: %+v, %v", matched, err)
	}

	// Kısmi eşleşme: fatura adı sistem adını içeriyor
	matched, err = matchRawMaterial("Akrilik Bağlayıcı Emülsiyonu", "")
	if err != nil || matched == nil || matched.ID != binder.ID {
		t.Errorf("kısmi eşleşme: %+v, %v", matched, err)
	}

	// Eşleşme bulunamazsa nil döner, hata değil
	matched, err = matchRawMaterial("Çinko Oksit", "")
	if err != nil || matched != nil {
		t.Errorf("eşleşmeyen kalem nil dönmeli: %+v, %v", matched, err)
	}
}

func TestParseSupplierInvoice(t *testing.T) {
	setupInvoiceTestDB(t)
	tio2 := seedInvoiceMaterial(t, "Titanyum Dioksit", "HM-TIO2")

	result, err := ParseSupplierInvoice(sampleInvoiceText)
	if err != nil {
		t.Fatalf("fatura parse edilemedi: %v", err)
	}
	if result.InvoiceNo != "TDK2025-0042" || result.Date != "12.07.2025" {
		t.Errorf("fatura bilgileri: %+v", result)
	}
	if len(result.Items) != 2 {
		t.Fatalf("2 kalem bekleniyordu, %d var", len(result.Items))
	}
	if result.Items[0].MatchedID == nil || *result.Items[0].MatchedID != tio2.ID {
		t.Errorf("ilk kalem SKU ile eşleşmeliydi: %+v", result.Items[0])
	}
	if result.Items[0].MatchedName != "Titanyum Dioksit" {
		t.Errorf("eşleşen ad: %q", result.Items[0].MatchedName)
	}
	// Sistemde karşılığı olmayan kalem eşleşmeden döner
	if result.Items[1].MatchedID != nil {
		t.Errorf("ikinci kalem eşleşmemeliydi: %+v", result.Items[1])
	}
}
