package report

import (
	"time"

	"boya-backend/internal/database"
	"boya-backend/internal/ledger"
	"boya-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type SalesReportDay struct {
	Date       string          `json:"date"`
	OrderCount int64           `json:"order_count"`
	Total      decimal.Decimal `json:"total"`
}

type TopProduct struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Qty       decimal.Decimal `json:"qty"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type SalesReportResponse struct {
	From        string           `json:"from"`
	To          string           `json:"to"`
	Total       decimal.Decimal  `json:"total"`
	OrderCount  int64            `json:"order_count"`
	Collected   decimal.Decimal  `json:"collected"`   // toplam - açık bakiye
	OpenBalance decimal.Decimal  `json:"open_balance"`
	Days        []SalesReportDay `json:"days"`
	TopProducts []TopProduct     `json:"top_products"`
}

// parseRange: from/to query parametrelerini çözer; boşsa son 30 gün.
func parseRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -30)

	if s := c.Query("from"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return from, to, fiber.NewError(fiber.StatusBadRequest, "Geçersiz from tarihi (YYYY-MM-DD olmalı)")
		}
		from = parsed
	}
	if s := c.Query("to"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return from, to, fiber.NewError(fiber.StatusBadRequest, "Geçersiz to tarihi (YYYY-MM-DD olmalı)")
		}
		// to günü dahil
		to = parsed.AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		return from, to, fiber.NewError(fiber.StatusBadRequest, "From tarihi to tarihinden önce olmalı")
	}
	return from, to, nil
}

// GET /api/reports/sales?from=2025-01-01&to=2025-01-31
func SalesReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseRange(c)
		if err != nil {
			return err
		}

		var sales []models.Sale
		if err := database.DB.
			Where("date >= ? AND date < ?", from, to).
			Order("date asc").
			Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar okunamadı")
		}

		total := decimal.Zero
		openBalance := decimal.Zero
		var days []SalesReportDay
		dayIdx := make(map[string]int)
		for _, s := range sales {
			total = total.Add(s.TotalAmount)
			openBalance = openBalance.Add(s.BalanceDue)

			day := s.Date.Format("2006-01-02")
			di, ok := dayIdx[day]
			if !ok {
				days = append(days, SalesReportDay{Date: day, Total: decimal.Zero})
				di = len(days) - 1
				dayIdx[day] = di
			}
			days[di].OrderCount++
			days[di].Total = days[di].Total.Add(s.TotalAmount)
		}
		if days == nil {
			days = []SalesReportDay{}
		}

		// En çok satan 5 ürün (adet bazında)
		type topRow struct {
			ProductID uint
			Name      string
			Qty       decimal.Decimal
			Revenue   decimal.Decimal
		}
		var topRows []topRow
		database.DB.Model(&models.SaleItem{}).
			Select("sale_items.product_id, products.name, SUM(sale_items.qty) as qty, SUM(sale_items.subtotal) as revenue").
			Joins("JOIN sales ON sales.id = sale_items.sale_id").
			Joins("JOIN products ON products.id = sale_items.product_id").
			Where("sales.date >= ? AND sales.date < ?", from, to).
			Group("sale_items.product_id, products.name").
			Order("qty desc").
			Limit(5).
			Scan(&topRows)

		topProducts := make([]TopProduct, 0, len(topRows))
		for _, row := range topRows {
			topProducts = append(topProducts, TopProduct{
				ProductID: row.ProductID,
				Name:      row.Name,
				Qty:       row.Qty,
				Revenue:   row.Revenue,
			})
		}

		return c.JSON(SalesReportResponse{
			From:        from.Format("2006-01-02"),
			To:          to.AddDate(0, 0, -1).Format("2006-01-02"),
			Total:       total,
			OrderCount:  int64(len(sales)),
			Collected:   total.Sub(openBalance),
			OpenBalance: openBalance,
			Days:        days,
			TopProducts: topProducts,
		})
	}
}

// GET /api/reports/inventory
// Hammadde ve mamul stok değerlemeleri + eşik altı kalemler.
func InventoryReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		type valuationRow struct {
			Total decimal.Decimal
		}

		var materialValue valuationRow
		database.DB.Model(&models.RawMaterial{}).
			Select("COALESCE(SUM(current_stock * cost_price), 0) as total").
			Scan(&materialValue)

		var productValue valuationRow
		database.DB.Model(&models.Product{}).
			Select("COALESCE(SUM(current_stock * selling_price), 0) as total").
			Scan(&productValue)

		lowStock, err := ledger.LowStock(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Eşik altı stok raporu alınamadı")
		}

		return c.JSON(fiber.Map{
			"raw_material_value": materialValue.Total,
			"product_value":      productValue.Total,
			"total_value":        materialValue.Total.Add(productValue.Total),
			"low_stock":          lowStock,
		})
	}
}

// GET /api/reports/purchases?from=2025-01-01&to=2025-01-31
func PurchasesReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseRange(c)
		if err != nil {
			return err
		}

		var purchases []models.Purchase
		if err := database.DB.
			Preload("Supplier").
			Where("date >= ? AND date < ?", from, to).
			Order("date asc").
			Find(&purchases).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Alımlar okunamadı")
		}

		total := decimal.Zero
		type supplierTotal struct {
			SupplierID uint            `json:"supplier_id"`
			Supplier   string          `json:"supplier"`
			Count      int64           `json:"count"`
			Total      decimal.Decimal `json:"total"`
		}
		var bySupplier []supplierTotal
		idx := make(map[uint]int)
		for _, p := range purchases {
			total = total.Add(p.TotalAmount)
			si, ok := idx[p.SupplierID]
			if !ok {
				bySupplier = append(bySupplier, supplierTotal{
					SupplierID: p.SupplierID,
					Supplier:   p.Supplier.Name,
					Total:      decimal.Zero,
				})
				si = len(bySupplier) - 1
				idx[p.SupplierID] = si
			}
			bySupplier[si].Count++
			bySupplier[si].Total = bySupplier[si].Total.Add(p.TotalAmount)
		}
		if bySupplier == nil {
			bySupplier = []supplierTotal{}
		}

		return c.JSON(fiber.Map{
			"from":           from.Format("2006-01-02"),
			"to":             to.AddDate(0, 0, -1).Format("2006-01-02"),
			"total":          total,
			"purchase_count": len(purchases),
			"by_supplier":    bySupplier,
		})
	}
}
