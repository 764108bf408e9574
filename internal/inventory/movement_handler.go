package inventory

import (
	"strconv"

	"boya-backend/internal/database"
	"boya-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type StockMovementResponse struct {
	ID          uint            `json:"id"`
	ItemKind    string          `json:"item_kind"`
	ItemID      uint            `json:"item_id"`
	Delta       decimal.Decimal `json:"delta"`
	Reason      string          `json:"reason"`
	ReferenceID *uint           `json:"reference_id"`
	Note        string          `json:"note"`
	CreatedBy   uint            `json:"created_by"`
	CreatedAt   string          `json:"created_at"`
}

// GET /api/inventory/stock-movements
// Filtreler: item_kind, item_id, reason, limit
func ListStockMovementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := database.DB.Model(&models.StockMovement{})

		if kind := c.Query("item_kind"); kind != "" {
			query = query.Where("item_kind = ?", kind)
		}
		if itemID, err := strconv.Atoi(c.Query("item_id")); err == nil && itemID > 0 {
			query = query.Where("item_id = ?", itemID)
		}
		if reason := c.Query("reason"); reason != "" {
			query = query.Where("reason = ?", reason)
		}

		limit, _ := strconv.Atoi(c.Query("limit", "100"))
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		var movements []models.StockMovement
		if err := query.Order("created_at desc, id desc").Limit(limit).Find(&movements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok hareketleri listelenemedi")
		}

		res := make([]StockMovementResponse, 0, len(movements))
		for _, m := range movements {
			res = append(res, StockMovementResponse{
				ID:          m.ID,
				ItemKind:    string(m.ItemKind),
				ItemID:      m.ItemID,
				Delta:       m.Delta,
				Reason:      string(m.Reason),
				ReferenceID: m.ReferenceID,
				Note:        m.Note,
				CreatedBy:   m.CreatedBy,
				CreatedAt:   m.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(res)
	}
}
