package inventory

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"boya-backend/internal/database"
	"boya-backend/internal/models"

	"github.com/shopspring/decimal"
)

// ParsedInvoiceItem: Fatura metninden çıkarılan alım kalemi
type ParsedInvoiceItem struct {
	SKU            string          `json:"sku"`           // Stok kodu (örn: HM-TIO2)
	MaterialName   string          `json:"material_name"` // Fatura üzerindeki ad
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Qty            decimal.Decimal `json:"qty"`
	QtyUnit        string          `json:"qty_unit"` // kg, litre
	Subtotal       decimal.Decimal `json:"subtotal"`
	MatchedID      *uint           `json:"matched_raw_material_id"` // Eşleşen hammadde (nil ise eşleşme yok)
	MatchedName    string          `json:"matched_raw_material_name"`
}

// ParseInvoiceResponse: Fatura metni parse sonucu, restock formu ön-doldurma için
type ParseInvoiceResponse struct {
	Items     []ParsedInvoiceItem `json:"items"`
	Date      string              `json:"date"`       // Fatura tarihi (varsa)
	InvoiceNo string              `json:"invoice_no"` // Fatura numarası (varsa)
}

// parseTurkishDecimal: Türkçe formatındaki sayıyı decimal'e çevir (1.234,56 -> 1234.56)
func parseTurkishDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "TL", "")
	s = strings.TrimSpace(s)

	// Binlik ayırıcı noktaları kaldır, virgülü ondalık noktaya çevir
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	return decimal.NewFromString(s)
}

// extractQtyAndUnit: "250 kg", "1.500,5 litre" gibi string'den miktar ve birim çıkar
func extractQtyAndUnit(s string) (decimal.Decimal, string) {
	s = strings.TrimSpace(s)

	var qtyStr strings.Builder
	var unitStr strings.Builder
	inQty := true

	for _, r := range s {
		if inQty && (unicode.IsDigit(r) || r == '.' || r == ',') {
			qtyStr.WriteRune(r)
		} else {
			inQty = false
			if !unicode.IsSpace(r) {
				unitStr.WriteRune(r)
			}
		}
	}

	unit := strings.TrimSpace(unitStr.String())
	qty, err := parseTurkishDecimal(qtyStr.String())
	if err != nil {
		return decimal.Zero, unit
	}
	return qty, unit
}

// parseInvoiceTable: Fatura metnindeki pipe ile ayrılmış tabloyu satır satır işle.
// Format: | Stok Kodu | Hammadde | Birim Fiyat | Miktar | Tutar |
func parseInvoiceTable(text string) ([]ParsedInvoiceItem, error) {
	var items []ParsedInvoiceItem

	lines := strings.Split(text, "\n")

	tableStartIdx := -1
	for i, line := range lines {
		if strings.Contains(line, "Stok Kodu") && strings.Contains(line, "Hammadde") {
			tableStartIdx = i
			break
		}
	}
	if tableStartIdx == -1 {
		return nil, fmt.Errorf("tablo başlığı bulunamadı")
	}

	for i := tableStartIdx + 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		// Boş satırları, ayraçları ve toplam satırlarını atla
		if line == "" || strings.HasPrefix(line, "---") ||
			strings.Contains(line, "Toplam:") || strings.Contains(line, "KDV:") ||
			strings.Contains(line, "Genel Toplam:") {
			continue
		}

		if !strings.Contains(line, "|") {
			// Pipe içermeyen satır çok satırlı hammadde adının devamı olabilir
			if len(items) > 0 && items[len(items)-1].MaterialName != "" {
				items[len(items)-1].MaterialName += " " + line
			}
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) < 6 {
			continue
		}

		sku := strings.TrimSpace(parts[1])
		name := strings.TrimSpace(parts[2])
		unitPriceStr := strings.TrimSpace(parts[3])
		qtyStr := strings.TrimSpace(parts[4])
		subtotalStr := strings.TrimSpace(parts[5])

		if sku == "" && name == "" {
			continue
		}
		if sku == "" {
			// Stok kodu olmayan satır önceki kaleme aittir
			if len(items) > 0 && name != "" {
				items[len(items)-1].MaterialName += " " + name
			}
			continue
		}

		unitPrice, err := parseTurkishDecimal(unitPriceStr)
		if err != nil {
			continue
		}
		qty, qtyUnit := extractQtyAndUnit(qtyStr)
		subtotal, err := parseTurkishDecimal(subtotalStr)
		if err != nil {
			continue
		}

		items = append(items, ParsedInvoiceItem{
			SKU:          sku,
			MaterialName: name,
			UnitPrice:    unitPrice,
			Qty:          qty,
			QtyUnit:      qtyUnit,
			Subtotal:     subtotal,
		})
	}

	return items, nil
}

// matchRawMaterial: Kalemi sistemdeki hammaddelerle eşleştir. Önce SKU,
// sonra normalize edilmiş isimle tam ve kısmi eşleşme denenir.
func matchRawMaterial(name string, sku string) (*models.RawMaterial, error) {
	name = strings.TrimSpace(name)
	sku = strings.TrimSpace(sku)

	if sku != "" {
		var material models.RawMaterial
		if err := database.DB.Where("sku = ?", sku).First(&material).Error; err == nil {
			return &material, nil
		}
	}

	if name == "" {
		return nil, nil
	}

	var materials []models.RawMaterial
	if err := database.DB.Find(&materials).Error; err != nil {
		return nil, err
	}

	normalize := func(s string) string {
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, "ı", "i")
		s = strings.ReplaceAll(s, "ğ", "g")
		s = strings.ReplaceAll(s, "ü", "u")
		s = strings.ReplaceAll(s, "ş", "s")
		s = strings.ReplaceAll(s, "ö", "o")
		s = strings.ReplaceAll(s, "ç", "c")
		return s
	}

	normalizedName := normalize(name)

	for i := range materials {
		if normalize(materials[i].Name) == normalizedName {
			return &materials[i], nil
		}
	}

	// Kısmi eşleşmede en uzun isim kazanır, 5 karakterden kısa eşleşmeler elenir
	var bestMatch *models.RawMaterial
	bestScore := 0
	for i := range materials {
		normalized := normalize(materials[i].Name)
		if strings.Contains(normalizedName, normalized) || strings.Contains(normalized, normalizedName) {
			if len(normalized) > bestScore {
				bestScore = len(normalized)
				bestMatch = &materials[i]
			}
		}
	}
	if bestScore >= 5 {
		return bestMatch, nil
	}

	return nil, nil
}

func extractInvoiceDate(text string) string {
	// "Fatura Tarihi: 12.12.2025" formatını bul
	re := regexp.MustCompile(`Fatura Tarihi:\s*(\d{2}\.\d{2}\.\d{4})`)
	matches := re.FindStringSubmatch(text)
	if len(matches) > 1 {
		return matches[1]
	}
	return ""
}

func extractInvoiceNo(text string) string {
	// "Fatura No: TDK2025-0042" formatını bul
	re := regexp.MustCompile(`Fatura No:\s*([A-Z0-9-]+)`)
	matches := re.FindStringSubmatch(text)
	if len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// ParseSupplierInvoice: Tedarikçi fatura metnini parse edip restock formu için
// kalem listesi çıkarır. Metin frontend'den düz text olarak gönderilir.
func ParseSupplierInvoice(text string) (*ParseInvoiceResponse, error) {
	date := extractInvoiceDate(text)
	invoiceNo := extractInvoiceNo(text)

	items, err := parseInvoiceTable(text)
	if err != nil {
		return nil, fmt.Errorf("tablo parse edilemedi: %v", err)
	}

	for i := range items {
		matched, err := matchRawMaterial(items[i].MaterialName, items[i].SKU)
		if err == nil && matched != nil {
			items[i].MatchedID = &matched.ID
			items[i].MatchedName = matched.Name
		}
	}

	return &ParseInvoiceResponse{
		Items:     items,
		Date:      date,
		InvoiceNo: invoiceNo,
	}, nil
}
