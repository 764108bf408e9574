package inventory

import (
	"fmt"
	"strconv"
	"strings"

	"boya-backend/internal/audit"
	"boya-backend/internal/database"
	"boya-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SupplierResponse struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	PurchaseCount int64  `json:"purchase_count"`
	CreatedAt     string `json:"created_at"`
}

type SupplierRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
}

// GET /api/inventory/suppliers
func ListSuppliersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var suppliers []models.Supplier
		if err := database.DB.Order("name asc").Find(&suppliers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçiler listelenemedi")
		}

		res := make([]SupplierResponse, 0, len(suppliers))
		for _, s := range suppliers {
			var count int64
			database.DB.Model(&models.Purchase{}).Where("supplier_id = ?", s.ID).Count(&count)
			res = append(res, SupplierResponse{
				ID:            s.ID,
				Name:          s.Name,
				ContactPerson: s.ContactPerson,
				Phone:         s.Phone,
				PurchaseCount: count,
				CreatedAt:     s.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(res)
	}
}

// POST /api/inventory/suppliers
func CreateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name zorunlu")
		}

		supplier := models.Supplier{
			Name:          body.Name,
			ContactPerson: strings.TrimSpace(body.ContactPerson),
			Phone:         strings.TrimSpace(body.Phone),
		}
		if err := database.DB.Create(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi oluşturulamadı")
		}

		// Audit log
		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "supplier",
				EntityID:    supplier.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Tedarikçi eklendi: %s", supplier.Name),
				After:       supplier,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(SupplierResponse{
			ID:            supplier.ID,
			Name:          supplier.Name,
			ContactPerson: supplier.ContactPerson,
			Phone:         supplier.Phone,
			CreatedAt:     supplier.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// PUT /api/inventory/suppliers/:id
func UpdateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
		}

		var supplier models.Supplier
		if err := database.DB.First(&supplier, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tedarikçi bulunamadı")
		}

		var body SupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name zorunlu")
		}

		before := supplier
		supplier.Name = body.Name
		supplier.ContactPerson = strings.TrimSpace(body.ContactPerson)
		supplier.Phone = strings.TrimSpace(body.Phone)

		if err := database.DB.Save(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi güncellenemedi")
		}

		// Audit log
		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "supplier",
				EntityID:    supplier.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Tedarikçi güncellendi: %s", supplier.Name),
				Before:      before,
				After:       supplier,
			})
		}

		return c.JSON(SupplierResponse{
			ID:            supplier.ID,
			Name:          supplier.Name,
			ContactPerson: supplier.ContactPerson,
			Phone:         supplier.Phone,
			CreatedAt:     supplier.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// DELETE /api/inventory/suppliers/:id
// Alım kaydı olan tedarikçi silinemez.
func DeleteSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
		}

		var supplier models.Supplier
		if err := database.DB.First(&supplier, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tedarikçi bulunamadı")
		}

		var purchaseCount int64
		database.DB.Model(&models.Purchase{}).Where("supplier_id = ?", supplier.ID).Count(&purchaseCount)
		if purchaseCount > 0 {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("Tedarikçi silinemez: %d alım kaydı var", purchaseCount))
		}

		if err := database.DB.Delete(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi silinemedi")
		}

		// Audit log
		userID, userName, uErr := getUserInfo(c)
		if uErr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "supplier",
				EntityID:    supplier.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Tedarikçi silindi: %s", supplier.Name),
				Before:      supplier,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
