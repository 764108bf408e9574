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

type ProductResponse struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	HasRecipe     bool            `json:"has_recipe"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

type CreateProductRequest struct {
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	CurrentStock  decimal.Decimal `json:"current_stock"` // açılış stoğu
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
}

type UpdateProductRequest struct {
	Name          *string          `json:"name"`
	SKU           *string          `json:"sku"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	MinStockLevel *decimal.Decimal `json:"min_stock_level"`
}

func productResponse(p models.Product, hasRecipe bool) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		SKU:           p.SKU,
		SellingPrice:  p.SellingPrice,
		CurrentStock:  p.CurrentStock,
		MinStockLevel: p.MinStockLevel,
		HasRecipe:     hasRecipe,
		CreatedAt:     p.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:     p.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/inventory/products
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		if err := database.DB.Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		// Aktif reçetesi olan ürünler tek sorguyla işaretlenir
		var recipes []models.Recipe
		database.DB.Where("is_active = ?", true).Find(&recipes)
		hasRecipe := make(map[uint]bool, len(recipes))
		for _, r := range recipes {
			hasRecipe[r.ProductID] = true
		}

		res := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			res = append(res, productResponse(p, hasRecipe[p.ID]))
		}
		return c.JSON(res)
	}
}

// POST /api/inventory/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.SKU = strings.TrimSpace(body.SKU)

		if body.Name == "" || body.SKU == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name ve sku zorunlu")
		}
		if body.SellingPrice.IsNegative() || body.CurrentStock.IsNegative() || body.MinStockLevel.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Fiyat, stok ve eşik negatif olamaz")
		}

		// SKU unique kontrolü
		var existing models.Product
		if err := database.DB.Where("sku = ?", body.SKU).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu SKU ile kayıtlı bir ürün zaten var")
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		product := models.Product{
			Name:          body.Name,
			SKU:           body.SKU,
			SellingPrice:  body.SellingPrice,
			MinStockLevel: body.MinStockLevel,
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem başlatılamadı")
		}
		if err := tx.Create(&product).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün oluşturulamadı")
		}
		if body.CurrentStock.IsPositive() {
			if err := ledger.Adjust(tx, models.StockItemProduct, product.ID, body.CurrentStock, models.MovementManual, nil, userID); err != nil {
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
			EntityType:  "product",
			EntityID:    product.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Ürün oluşturuldu: %s (%s)", product.Name, product.SKU),
			After:       product,
		})

		database.DB.First(&product, product.ID)
		return c.Status(fiber.StatusCreated).JSON(productResponse(product, false))
	}
}

// PUT /api/inventory/products/:id
// current_stock burada güncellenemez; stok sadece ledger işlemleriyle değişir.
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		before := product

		if body.Name != nil && strings.TrimSpace(*body.Name) != "" {
			product.Name = strings.TrimSpace(*body.Name)
		}
		if body.SKU != nil && strings.TrimSpace(*body.SKU) != "" {
			newSKU := strings.TrimSpace(*body.SKU)
			if newSKU != product.SKU {
				var existing models.Product
				if err := database.DB.Where("sku = ? AND id != ?", newSKU, product.ID).First(&existing).Error; err == nil {
					return fiber.NewError(fiber.StatusBadRequest, "Bu SKU ile kayıtlı bir ürün zaten var")
				}
				product.SKU = newSKU
			}
		}
		if body.SellingPrice != nil {
			if body.SellingPrice.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "Fiyat negatif olamaz")
			}
			product.SellingPrice = *body.SellingPrice
		}
		if body.MinStockLevel != nil {
			if body.MinStockLevel.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "Eşik negatif olamaz")
			}
			product.MinStockLevel = *body.MinStockLevel
		}

		if err := database.DB.Save(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		// Audit log
		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "product",
				EntityID:    product.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Ürün güncellendi: %s", product.Name),
				Before:      before,
				After:       product,
			})
		}

		var recipeCount int64
		database.DB.Model(&models.Recipe{}).Where("product_id = ? AND is_active = ?", product.ID, true).Count(&recipeCount)
		return c.JSON(productResponse(product, recipeCount > 0))
	}
}

// DELETE /api/inventory/products/:id
// Reçetesi olan veya satış kaleminde geçen ürün silinemez.
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var recipeRefs int64
		database.DB.Model(&models.Recipe{}).Where("product_id = ?", product.ID).Count(&recipeRefs)
		var saleRefs int64
		database.DB.Model(&models.SaleItem{}).Where("product_id = ?", product.ID).Count(&saleRefs)
		if recipeRefs > 0 || saleRefs > 0 {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("Ürün silinemez: %d reçete, %d satış kalemi referans veriyor", recipeRefs, saleRefs))
		}

		if err := database.DB.Delete(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün silinemedi")
		}

		// Audit log
		userID, userName, uErr := getUserInfo(c)
		if uErr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "product",
				EntityID:    product.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Ürün silindi: %s (%s)", product.Name, product.SKU),
				Before:      product,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
