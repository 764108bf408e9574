package production

import (
	"fmt"
	"strconv"

	"boya-backend/internal/audit"
	"boya-backend/internal/cache"
	"boya-backend/internal/database"
	"boya-backend/internal/ledger"
	"boya-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ProductionRunResponse struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	Product     string          `json:"product"`
	BatchCode   string          `json:"batch_code"`
	Date        string          `json:"date"`
	QtyProduced decimal.Decimal `json:"qty_produced"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"created_at"`
}

type ExecuteRunRequest struct {
	ProductID    uint            `json:"product_id"`
	QtyToProduce decimal.Decimal `json:"qty_to_produce"`
	BatchCode    string          `json:"batch_code"` // boşsa otomatik üretilir
}

func runResponse(r *models.ProductionRun) ProductionRunResponse {
	return ProductionRunResponse{
		ID:          r.ID,
		ProductID:   r.ProductID,
		Product:     r.Product.Name,
		BatchCode:   r.BatchCode,
		Date:        r.Date.Format("2006-01-02"),
		QtyProduced: r.QtyProduced,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/production/runs
func ListRunsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		query := database.DB.
			Preload("Product").
			Order("date desc, id desc").
			Limit(limit)

		if productID, err := strconv.Atoi(c.Query("product_id")); err == nil && productID > 0 {
			query = query.Where("product_id = ?", productID)
		}

		var runs []models.ProductionRun
		if err := query.Find(&runs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Üretim kayıtları listelenemedi")
		}

		res := make([]ProductionRunResponse, 0, len(runs))
		for i := range runs {
			res = append(res, runResponse(&runs[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/production/runs
// Üretim: reçete açılır, hammadde yeterliliği kilit altında doğrulanır,
// stoklar tek transaction içinde güncellenir (ledger.ExecuteProductionRun).
func ExecuteRunHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ExecuteRunRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		run, err := ledger.ExecuteProductionRun(database.DB, ledger.ProductionRunInput{
			ProductID:    body.ProductID,
			QtyToProduce: body.QtyToProduce,
			BatchCode:    body.BatchCode,
			CreatedBy:    userID,
		})
		if err != nil {
			return ledgerError(err)
		}

		// Audit log
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "production_run",
			EntityID:    run.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Üretim tamamlandı: %s %s - %s", run.QtyProduced.String(), run.Product.Name, run.BatchCode),
			After:       run,
		})

		cache.InvalidateDashboard(c.Context())

		return c.Status(fiber.StatusCreated).JSON(runResponse(run))
	}
}

// POST /api/production/requirements
// Üretim öncesi önizleme: reçete gereksinimlerini mevcut stokla karşılaştırır,
// stok değiştirmez.
func RequirementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ExecuteRunRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}
		if body.ProductID == 0 || !body.QtyToProduce.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "Product_id ve pozitif qty_to_produce zorunlu")
		}

		requirements, err := ledger.Resolve(database.DB, body.ProductID, body.QtyToProduce)
		if err != nil {
			return ledgerError(err)
		}

		type requirementRow struct {
			RawMaterialID uint            `json:"raw_material_id"`
			Name          string          `json:"name"`
			Unit          string          `json:"unit"`
			Required      decimal.Decimal `json:"required"`
			Available     decimal.Decimal `json:"available"`
			Sufficient    bool            `json:"sufficient"`
		}

		rows := make([]requirementRow, 0, len(requirements))
		allSufficient := true
		for _, req := range requirements {
			snapshot, err := ledger.Query(database.DB, models.StockItemRawMaterial, req.RawMaterialID)
			if err != nil {
				return ledgerError(err)
			}
			sufficient := snapshot.CurrentStock.GreaterThanOrEqual(req.Required)
			if !sufficient {
				allSufficient = false
			}
			rows = append(rows, requirementRow{
				RawMaterialID: req.RawMaterialID,
				Name:          req.Name,
				Unit:          req.Unit,
				Required:      req.Required,
				Available:     snapshot.CurrentStock,
				Sufficient:    sufficient,
			})
		}

		return c.JSON(fiber.Map{
			"requirements":   rows,
			"all_sufficient": allSufficient,
		})
	}
}
