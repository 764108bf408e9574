package inventory

import (
	"fmt"
	"strconv"
	"strings"

	"boya-backend/internal/audit"
	"boya-backend/internal/database"
	"boya-backend/internal/ledger"
	"boya-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type RawMaterialResponse struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Unit         string          `json:"unit"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

type CreateRawMaterialRequest struct {
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Unit         string          `json:"unit"` // kg, litre
	CostPrice    decimal.Decimal `json:"cost_price"`
	CurrentStock decimal.Decimal `json:"current_stock"` // açılış stoğu
	ReorderLevel decimal.Decimal `json:"reorder_level"`
}

type UpdateRawMaterialRequest struct {
	Name         *string          `json:"name"`
	SKU          *string          `json:"sku"`
	Unit         *string          `json:"unit"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	ReorderLevel *decimal.Decimal `json:"reorder_level"`
}

func rawMaterialResponse(m models.RawMaterial) RawMaterialResponse {
	return RawMaterialResponse{
		ID:           m.ID,
		Name:         m.Name,
		SKU:          m.SKU,
		Unit:         m.Unit,
		CostPrice:    m.CostPrice,
		CurrentStock: m.CurrentStock,
		ReorderLevel: m.ReorderLevel,
		CreatedAt:    m.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:    m.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/inventory/raw-materials
func ListRawMaterialsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var materials []models.RawMaterial
		if err := database.DB.Order("name asc").Find(&materials).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hammaddeler listelenemedi")
		}

		res := make([]RawMaterialResponse, 0, len(materials))
		for _, m := range materials {
			res = append(res, rawMaterialResponse(m))
		}
		return c.JSON(res)
	}
}

// POST /api/inventory/raw-materials
func CreateRawMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRawMaterialRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.SKU = strings.TrimSpace(body.SKU)
		body.Unit = strings.TrimSpace(body.Unit)

		if body.Name == "" || body.SKU == "" || body.Unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name, sku ve unit zorunlu")
		}
		if body.CostPrice.IsNegative() || body.CurrentStock.IsNegative() || body.ReorderLevel.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Fiyat, stok ve eşik negatif olamaz")
		}

		// SKU unique kontrolü
		var existing models.RawMaterial
		if err := database.DB.Where("sku = ?", body.SKU).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu SKU ile kayıtlı bir hammadde zaten var")
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		material := models.RawMaterial{
			Name:         body.Name,
			SKU:          body.SKU,
			Unit:         body.Unit,
			CostPrice:    body.CostPrice,
			ReorderLevel: body.ReorderLevel,
		}

		// Açılış stoğu hareket kaydıyla birlikte tek transaction içinde yazılır;
		// sonraki tüm stok değişiklikleri ledger işlemleri üzerinden yapılır.
		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem başlatılamadı")
		}
		if err := tx.Create(&material).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Hammadde oluşturulamadı")
		}
		if body.CurrentStock.IsPositive() {
			if err := ledger.Adjust(tx, models.StockItemRawMaterial, material.ID, body.CurrentStock, models.MovementManual, nil, userID); err != nil {
				tx.Rollback()
				return ledgerError(err)
			}
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem tamamlanamadı")
		}

		// Audit log
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "raw_material",
			EntityID:    material.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Hammadde oluşturuldu: %s (%s)", material.Name, material.SKU),
			After:       material,
		})

		database.DB.First(&material, material.ID)
		return c.Status(fiber.StatusCreated).JSON(rawMaterialResponse(material))
	}
}

// PUT /api/inventory/raw-materials/:id
// current_stock burada güncellenemez; stok sadece ledger işlemleriyle değişir.
func UpdateRawMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
		}

		var material models.RawMaterial
		if err := database.DB.First(&material, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Hammadde bulunamadı")
		}

		var body UpdateRawMaterialRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		before := material

		if body.Name != nil && strings.TrimSpace(*body.Name) != "" {
			material.Name = strings.TrimSpace(*body.Name)
		}
		if body.SKU != nil && strings.TrimSpace(*body.SKU) != "" {
			newSKU := strings.TrimSpace(*body.SKU)
			if newSKU != material.SKU {
				var existing models.RawMaterial
				if err := database.DB.Where("sku = ? AND id != ?", newSKU, material.ID).First(&existing).Error; err == nil {
					return fiber.NewError(fiber.StatusBadRequest, "Bu SKU ile kayıtlı bir hammadde zaten var")
				}
				material.SKU = newSKU
			}
		}
		if body.Unit != nil && strings.TrimSpace(*body.Unit) != "" {
			material.Unit = strings.TrimSpace(*body.Unit)
		}
		if body.CostPrice != nil {
			if body.CostPrice.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "Fiyat negatif olamaz")
			}
			material.CostPrice = *body.CostPrice
		}
		if body.ReorderLevel != nil {
			if body.ReorderLevel.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "Eşik negatif olamaz")
			}
			material.ReorderLevel = *body.ReorderLevel
		}

		if err := database.DB.Save(&material).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hammadde güncellenemedi")
		}

		// Audit log
		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "raw_material",
				EntityID:    material.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Hammadde güncellendi: %s", material.Name),
				Before:      before,
				After:       material,
			})
		}

		return c.JSON(rawMaterialResponse(material))
	}
}

// DELETE /api/inventory/raw-materials/:id
// Reçete veya alım kaleminde referans verilen hammadde silinemez.
func DeleteRawMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
		}

		var material models.RawMaterial
		if err := database.DB.First(&material, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Hammadde bulunamadı")
		}

		var recipeRefs int64
		database.DB.Model(&models.RecipeItem{}).Where("raw_material_id = ?", material.ID).Count(&recipeRefs)
		var purchaseRefs int64
		database.DB.Model(&models.PurchaseItem{}).Where("raw_material_id = ?", material.ID).Count(&purchaseRefs)
		if recipeRefs > 0 || purchaseRefs > 0 {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("Hammadde silinemez: %d reçete kalemi, %d alım kalemi referans veriyor", recipeRefs, purchaseRefs))
		}

		if err := database.DB.Delete(&material).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hammadde silinemedi")
		}

		// Audit log
		userID, userName, uErr := getUserInfo(c)
		if uErr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "raw_material",
				EntityID:    material.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Hammadde silindi: %s (%s)", material.Name, material.SKU),
				Before:      material,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
