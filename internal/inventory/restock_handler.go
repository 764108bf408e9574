package inventory

import (
	"fmt"
	"strconv"
	"time"

	"boya-backend/internal/audit"
	"boya-backend/internal/cache"
	"boya-backend/internal/database"
	"boya-backend/internal/ledger"
	"boya-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type RestockItemRequest struct {
	RawMaterialID uint            `json:"raw_material_id"`
	Qty           decimal.Decimal `json:"qty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

type RestockRequest struct {
	SupplierID uint                 `json:"supplier_id"`
	Date       string               `json:"date"` // YYYY-MM-DD, boşsa bugün
	InvoiceNo  string               `json:"invoice_no"`
	Items      []RestockItemRequest `json:"items"`
}

type PurchaseItemResponse struct {
	ID            uint            `json:"id"`
	RawMaterialID uint            `json:"raw_material_id"`
	RawMaterial   string          `json:"raw_material"`
	Qty           decimal.Decimal `json:"qty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type PurchaseResponse struct {
	ID          uint                   `json:"id"`
	SupplierID  uint                   `json:"supplier_id"`
	Supplier    string                 `json:"supplier"`
	InvoiceNo   string                 `json:"invoice_no"`
	Date        string                 `json:"date"`
	TotalAmount decimal.Decimal        `json:"total_amount"`
	Items       []PurchaseItemResponse `json:"items"`
	CreatedAt   string                 `json:"created_at"`
}

func purchaseResponse(p *models.Purchase) PurchaseResponse {
	items := make([]PurchaseItemResponse, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, PurchaseItemResponse{
			ID:            item.ID,
			RawMaterialID: item.RawMaterialID,
			RawMaterial:   item.RawMaterial.Name,
			Qty:           item.Qty,
			UnitPrice:     item.UnitPrice,
			Subtotal:      item.Subtotal,
		})
	}
	return PurchaseResponse{
		ID:          p.ID,
		SupplierID:  p.SupplierID,
		Supplier:    p.Supplier.Name,
		InvoiceNo:   p.InvoiceNo,
		Date:        p.Date.Format("2006-01-02"),
		TotalAmount: p.TotalAmount,
		Items:       items,
		CreatedAt:   p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/inventory/restock
// Tedarikçi alımı: stok artışı ve son-alım-fiyatı güncellemesi ledger
// üzerinden tek transaction içinde yapılır.
func RestockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RestockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		date := time.Now()
		if body.Date != "" {
			parsed, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz tarih formatı (YYYY-MM-DD olmalı)")
			}
			date = parsed
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		items := make([]ledger.RestockItemInput, 0, len(body.Items))
		for _, item := range body.Items {
			items = append(items, ledger.RestockItemInput{
				RawMaterialID: item.RawMaterialID,
				Qty:           item.Qty,
				UnitPrice:     item.UnitPrice,
			})
		}

		purchase, err := ledger.Restock(database.DB, ledger.RestockInput{
			SupplierID: body.SupplierID,
			Date:       date,
			InvoiceNo:  body.InvoiceNo,
			Items:      items,
			CreatedBy:  userID,
		})
		if err != nil {
			return ledgerError(err)
		}

		// Audit log
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "purchase",
			EntityID:    purchase.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Alım kaydedildi: %s - %s TL (%d kalem)", purchase.Supplier.Name, purchase.TotalAmount.StringFixed(2), len(purchase.Items)),
			After:       purchase,
		})

		cache.InvalidateDashboard(c.Context())

		return c.Status(fiber.StatusCreated).JSON(purchaseResponse(purchase))
	}
}

// GET /api/inventory/purchases
func ListPurchasesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		query := database.DB.
			Preload("Supplier").
			Preload("Items").
			Preload("Items.RawMaterial").
			Order("date desc, id desc").
			Limit(limit)

		if supplierID, err := strconv.Atoi(c.Query("supplier_id")); err == nil && supplierID > 0 {
			query = query.Where("supplier_id = ?", supplierID)
		}

		var purchases []models.Purchase
		if err := query.Find(&purchases).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Alımlar listelenemedi")
		}

		res := make([]PurchaseResponse, 0, len(purchases))
		for i := range purchases {
			res = append(res, purchaseResponse(&purchases[i]))
		}
		return c.JSON(res)
	}
}
