package dashboard

import (
	"time"

	"boya-backend/internal/cache"
	"boya-backend/internal/database"
	"boya-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type SalesStats struct {
	Today       decimal.Decimal `json:"today"`
	Yesterday   decimal.Decimal `json:"yesterday"`
	Change      float64         `json:"change"` // dünden bugüne yüzde değişim
	TotalOrders int64           `json:"total_orders"`
}

type ProductionStats struct {
	Today   int64 `json:"today"`
	Pending int64 `json:"pending"`
}

type InventoryStats struct {
	LowStockMaterials int64 `json:"low_stock_materials"`
	LowStockProducts  int64 `json:"low_stock_products"`
}

type CreditStats struct {
	Overdue  int64 `json:"overdue"`
	Upcoming int64 `json:"upcoming"`
}

type ChartPoint struct {
	Name  string          `json:"name"` // "Oca 02" gibi gün etiketi
	Sales decimal.Decimal `json:"sales"`
}

type StatsResponse struct {
	Sales      SalesStats      `json:"sales"`
	Production ProductionStats `json:"production"`
	Inventory  InventoryStats  `json:"inventory"`
	Credits    CreditStats     `json:"credits"`
	Chart      []ChartPoint    `json:"chart"`
}

func sumSalesBetween(from, to time.Time) decimal.Decimal {
	type row struct {
		Total decimal.Decimal
	}
	var r row
	database.DB.Model(&models.Sale{}).
		Select("COALESCE(SUM(total_amount), 0) as total").
		Where("date >= ? AND date < ?", from, to).
		Scan(&r)
	return r.Total
}

// GET /api/dashboard/stats
// Sonuç Redis'te kısa süreli cache'lenir; her ledger işlemi cache'i düşürür.
func StatsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		var cached StatsResponse
		if cache.GetJSON(ctx, cache.DashboardStatsKey, &cached) {
			return c.JSON(cached)
		}

		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		yesterday := today.AddDate(0, 0, -1)
		tomorrow := today.AddDate(0, 0, 1)

		todaySales := sumSalesBetween(today, tomorrow)
		yesterdaySales := sumSalesBetween(yesterday, today)

		var salesChange float64
		if yesterdaySales.IsPositive() {
			change, _ := todaySales.Sub(yesterdaySales).
				Div(yesterdaySales).
				Mul(decimal.NewFromInt(100)).
				Round(1).
				Float64()
			salesChange = change
		} else if todaySales.IsPositive() {
			salesChange = 100
		}

		var totalOrders int64
		database.DB.Model(&models.Sale{}).Count(&totalOrders)

		var productionToday int64
		database.DB.Model(&models.ProductionRun{}).
			Where("date >= ? AND date < ?", today, tomorrow).
			Count(&productionToday)
		var productionPending int64
		database.DB.Model(&models.ProductionRun{}).
			Where("status = ?", models.ProductionPending).
			Count(&productionPending)

		var lowStockMaterials int64
		database.DB.Model(&models.RawMaterial{}).
			Where("current_stock < reorder_level").
			Count(&lowStockMaterials)
		var lowStockProducts int64
		database.DB.Model(&models.Product{}).
			Where("current_stock < min_stock_level").
			Count(&lowStockProducts)

		var overdueInstallments int64
		database.DB.Model(&models.Installment{}).
			Where("status = ? AND due_date < ?", models.InstallmentPending, today).
			Count(&overdueInstallments)
		var upcomingInstallments int64
		database.DB.Model(&models.Installment{}).
			Where("status = ? AND due_date >= ? AND due_date < ?", models.InstallmentPending, today, today.AddDate(0, 0, 7)).
			Count(&upcomingInstallments)

		// Son 7 günün satış grafiği
		chart := make([]ChartPoint, 0, 7)
		for i := 6; i >= 0; i-- {
			day := today.AddDate(0, 0, -i)
			chart = append(chart, ChartPoint{
				Name:  day.Format("Jan 02"),
				Sales: sumSalesBetween(day, day.AddDate(0, 0, 1)),
			})
		}

		stats := StatsResponse{
			Sales: SalesStats{
				Today:       todaySales,
				Yesterday:   yesterdaySales,
				Change:      salesChange,
				TotalOrders: totalOrders,
			},
			Production: ProductionStats{
				Today:   productionToday,
				Pending: productionPending,
			},
			Inventory: InventoryStats{
				LowStockMaterials: lowStockMaterials,
				LowStockProducts:  lowStockProducts,
			},
			Credits: CreditStats{
				Overdue:  overdueInstallments,
				Upcoming: upcomingInstallments,
			},
			Chart: chart,
		}

		cache.SetJSON(ctx, cache.DashboardStatsKey, stats, cache.TTLShort)

		return c.JSON(stats)
	}
}
