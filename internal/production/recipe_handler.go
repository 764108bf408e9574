package production

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
	"gorm.io/gorm"
)

type RecipeItemResponse struct {
	ID               uint            `json:"id"`
	RawMaterialID    uint            `json:"raw_material_id"`
	RawMaterial      string          `json:"raw_material"`
	Unit             string          `json:"unit"`
	QuantityRequired decimal.Decimal `json:"quantity_required"`
}

type RecipeResponse struct {
	ID        uint                 `json:"id"`
	ProductID uint                 `json:"product_id"`
	Product   string               `json:"product"`
	Notes     string               `json:"notes"`
	IsActive  bool                 `json:"is_active"`
	Items     []RecipeItemResponse `json:"items"`
	CreatedAt string               `json:"created_at"`
	UpdatedAt string               `json:"updated_at"`
}

type RecipeItemRequest struct {
	RawMaterialID    uint            `json:"raw_material_id"`
	QuantityRequired decimal.Decimal `json:"quantity_required"`
}

type CreateRecipeRequest struct {
	ProductID uint                `json:"product_id"`
	Notes     string              `json:"notes"`
	Items     []RecipeItemRequest `json:"items"`
}

type UpdateRecipeRequest struct {
	Notes *string             `json:"notes"`
	Items []RecipeItemRequest `json:"items"`
}

func recipeResponse(r *models.Recipe) RecipeResponse {
	items := make([]RecipeItemResponse, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, RecipeItemResponse{
			ID:               item.ID,
			RawMaterialID:    item.RawMaterialID,
			RawMaterial:      item.RawMaterial.Name,
			Unit:             item.RawMaterial.Unit,
			QuantityRequired: item.QuantityRequired,
		})
	}
	return RecipeResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		Product:   r.Product.Name,
		Notes:     r.Notes,
		IsActive:  r.IsActive,
		Items:     items,
		CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: r.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/production/recipes
func ListRecipesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var recipes []models.Recipe
		if err := database.DB.
			Preload("Product").
			Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_items.id asc") }).
			Preload("Items.RawMaterial").
			Order("id desc").
			Find(&recipes).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reçeteler listelenemedi")
		}

		res := make([]RecipeResponse, 0, len(recipes))
		for i := range recipes {
			res = append(res, recipeResponse(&recipes[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/production/recipes/:id
func GetRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
		}

		var recipe models.Recipe
		if err := database.DB.
			Preload("Product").
			Preload("Items.RawMaterial").
			First(&recipe, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Reçete bulunamadı")
		}
		return c.JSON(recipeResponse(&recipe))
	}
}

// POST /api/production/recipes
// Ürün başına tek reçete kuralı: reçetesi olan ürüne ikinci reçete açılamaz.
func CreateRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRecipeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Product_id zorunlu")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Reçetede en az bir kalem olmalı")
		}
		seen := make(map[uint]bool, len(body.Items))
		for _, item := range body.Items {
			if item.RawMaterialID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Kalemlerde raw_material_id zorunlu")
			}
			if !item.QuantityRequired.IsPositive() {
				return fiber.NewError(fiber.StatusBadRequest, "Kalem miktarları pozitif olmalı")
			}
			if seen[item.RawMaterialID] {
				return fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("Aynı hammadde birden fazla kalemde yer alamaz (ID: %d)", item.RawMaterialID))
			}
			seen[item.RawMaterialID] = true
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var existing models.Recipe
		if err := database.DB.Where("product_id = ?", body.ProductID).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("%s için zaten bir reçete var (ID: %d)", product.Name, existing.ID))
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem başlatılamadı")
		}

		recipe := models.Recipe{
			ProductID: body.ProductID,
			Notes:     strings.TrimSpace(body.Notes),
			IsActive:  true,
		}
		if err := tx.Create(&recipe).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete oluşturulamadı")
		}

		for _, item := range body.Items {
			var material models.RawMaterial
			if err := tx.First(&material, "id = ?", item.RawMaterialID).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusNotFound,
					fmt.Sprintf("Hammadde bulunamadı (ID: %d)", item.RawMaterialID))
			}
			recipeItem := models.RecipeItem{
				RecipeID:         recipe.ID,
				RawMaterialID:    item.RawMaterialID,
				QuantityRequired: item.QuantityRequired,
			}
			if err := tx.Create(&recipeItem).Error; err != nil {
				tx.Rollback()
				return fiber.NewError(fiber.StatusInternalServerError, "Reçete kalemi oluşturulamadı")
			}
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem tamamlanamadı")
		}

		// Audit log
		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "recipe",
				EntityID:    recipe.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Reçete oluşturuldu: %s (%d kalem)", product.Name, len(body.Items)),
				After:       recipe,
			})
		}

		database.DB.Preload("Product").Preload("Items.RawMaterial").First(&recipe, recipe.ID)
		return c.Status(fiber.StatusCreated).JSON(recipeResponse(&recipe))
	}
}

// PUT /api/production/recipes/:id
// Kalem listesi verilirse mevcut set silinip yenisiyle değiştirilir (tek
// transaction, ledger.ReplaceRecipeItems).
func UpdateRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
		}

		var recipe models.Recipe
		if err := database.DB.Preload("Product").First(&recipe, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Reçete bulunamadı")
		}

		var body UpdateRecipeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		before := recipe

		if body.Notes != nil {
			recipe.Notes = strings.TrimSpace(*body.Notes)
			if err := database.DB.Save(&recipe).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Reçete güncellenemedi")
			}
		}

		if len(body.Items) > 0 {
			items := make([]ledger.RecipeItemInput, 0, len(body.Items))
			for _, item := range body.Items {
				items = append(items, ledger.RecipeItemInput{
					RawMaterialID:    item.RawMaterialID,
					QuantityRequired: item.QuantityRequired,
				})
			}
			if err := ledger.ReplaceRecipeItems(database.DB, recipe.ID, items); err != nil {
				return ledgerError(err)
			}
		}

		// Audit log
		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "recipe",
				EntityID:    recipe.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Reçete güncellendi: %s", recipe.Product.Name),
				Before:      before,
				After:       recipe,
			})
		}

		database.DB.Preload("Product").Preload("Items.RawMaterial").First(&recipe, recipe.ID)
		return c.JSON(recipeResponse(&recipe))
	}
}

// DELETE /api/production/recipes/:id
func DeleteRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
		}

		var recipe models.Recipe
		if err := database.DB.Preload("Product").First(&recipe, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Reçete bulunamadı")
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem başlatılamadı")
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeItem{}).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete kalemleri silinemedi")
		}
		if err := tx.Delete(&recipe).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Reçete silinemedi")
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem tamamlanamadı")
		}

		// Audit log
		userID, userName, uErr := getUserInfo(c)
		if uErr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "recipe",
				EntityID:    recipe.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Reçete silindi: %s", recipe.Product.Name),
				Before:      recipe,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
