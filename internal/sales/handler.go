package sales

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

type SaleItemResponse struct {
	ID        uint            `json:"id"`
	ProductID uint            `json:"product_id"`
	Product   string          `json:"product"`
	Qty       decimal.Decimal `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type InstallmentResponse struct {
	ID      uint            `json:"id"`
	SaleID  uint            `json:"sale_id"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate string          `json:"due_date"`
	Status  string          `json:"status"`
	PaidAt  string          `json:"paid_at,omitempty"`
	Notes   string          `json:"notes,omitempty"`
}

type SaleResponse struct {
	ID            uint                  `json:"id"`
	CustomerID    uint                  `json:"customer_id"`
	Customer      string                `json:"customer"`
	InvoiceNo     string                `json:"invoice_no"`
	Date          string                `json:"date"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	PaymentMethod string                `json:"payment_method"`
	PaymentStatus string                `json:"payment_status"`
	DueDate       string                `json:"due_date,omitempty"`
	BalanceDue    decimal.Decimal       `json:"balance_due"`
	Items         []SaleItemResponse    `json:"items"`
	Installments  []InstallmentResponse `json:"installments"`
	CreatedAt     string                `json:"created_at"`
}

type CreateSaleItemRequest struct {
	ProductID uint            `json:"product_id"`
	Qty       decimal.Decimal `json:"qty"`
}

type CreateInstallmentRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	DueDate string          `json:"due_date"` // YYYY-MM-DD
}

type CreateSaleRequest struct {
	CustomerID    uint                       `json:"customer_id"`
	PaymentMethod string                     `json:"payment_method"` // cash, card, transfer
	PaymentStatus string                     `json:"payment_status"` // paid, credit, partial
	DueDate       string                     `json:"due_date"`       // YYYY-MM-DD, vadeli satışta
	Items         []CreateSaleItemRequest    `json:"items"`
	Installments  []CreateInstallmentRequest `json:"installments"`
}

func installmentResponse(inst models.Installment) InstallmentResponse {
	res := InstallmentResponse{
		ID:      inst.ID,
		SaleID:  inst.SaleID,
		Amount:  inst.Amount,
		DueDate: inst.DueDate.Format("2006-01-02"),
		Status:  string(inst.Status),
		Notes:   inst.Notes,
	}
	if inst.PaidAt != nil {
		res.PaidAt = inst.PaidAt.Format("2006-01-02 15:04:05")
	}
	return res
}

func saleResponse(s *models.Sale) SaleResponse {
	items := make([]SaleItemResponse, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, SaleItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Product:   item.Product.Name,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	installments := make([]InstallmentResponse, 0, len(s.Installments))
	for _, inst := range s.Installments {
		installments = append(installments, installmentResponse(inst))
	}

	res := SaleResponse{
		ID:            s.ID,
		CustomerID:    s.CustomerID,
		Customer:      s.Customer.Name,
		InvoiceNo:     s.InvoiceNo,
		Date:          s.Date.Format("2006-01-02"),
		TotalAmount:   s.TotalAmount,
		PaymentMethod: s.PaymentMethod,
		PaymentStatus: string(s.PaymentStatus),
		BalanceDue:    s.BalanceDue,
		Items:         items,
		Installments:  installments,
		CreatedAt:     s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if s.DueDate != nil {
		res.DueDate = s.DueDate.Format("2006-01-02")
	}
	return res
}

// GET /api/sales
// Satışlar tarihe göre gruplanmış döner (gün başına bir grup, yeniden eskiye).
func ListSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "100"))
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		query := database.DB.
			Preload("Customer").
			Preload("Items.Product").
			Preload("Installments").
			Order("date desc, id desc").
			Limit(limit)

		if customerID, err := strconv.Atoi(c.Query("customer_id")); err == nil && customerID > 0 {
			query = query.Where("customer_id = ?", customerID)
		}
		if status := c.Query("payment_status"); status != "" {
			query = query.Where("payment_status = ?", status)
		}

		var sales []models.Sale
		if err := query.Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar listelenemedi")
		}

		type dayGroup struct {
			Date  string          `json:"date"`
			Total decimal.Decimal `json:"total"`
			Sales []SaleResponse  `json:"sales"`
		}

		var groups []dayGroup
		idx := make(map[string]int)
		for i := range sales {
			day := sales[i].Date.Format("2006-01-02")
			gi, ok := idx[day]
			if !ok {
				groups = append(groups, dayGroup{Date: day, Total: decimal.Zero})
				gi = len(groups) - 1
				idx[day] = gi
			}
			groups[gi].Total = groups[gi].Total.Add(sales[i].TotalAmount)
			groups[gi].Sales = append(groups[gi].Sales, saleResponse(&sales[i]))
		}
		if groups == nil {
			groups = []dayGroup{}
		}
		return c.JSON(groups)
	}
}

// GET /api/sales/:id
func GetSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
		}

		var sale models.Sale
		if err := database.DB.
			Preload("Customer").
			Preload("Items.Product").
			Preload("Installments").
			First(&sale, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Satış bulunamadı")
		}
		return c.JSON(saleResponse(&sale))
	}
}

// POST /api/sales
// Satış: fiyat o anki selling_price'tan kopyalanır, stok düşümü ve taksit
// oluşturma tek transaction içinde yapılır (ledger.CreateSale).
func CreateSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		var dueDate *time.Time
		if body.DueDate != "" {
			parsed, err := time.Parse("2006-01-02", body.DueDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz tarih formatı (YYYY-MM-DD olmalı)")
			}
			dueDate = &parsed
		}

		items := make([]ledger.SaleItemInput, 0, len(body.Items))
		for _, item := range body.Items {
			items = append(items, ledger.SaleItemInput{
				ProductID: item.ProductID,
				Qty:       item.Qty,
			})
		}

		installments := make([]ledger.InstallmentInput, 0, len(body.Installments))
		for _, inst := range body.Installments {
			instDue, err := time.Parse("2006-01-02", inst.DueDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz taksit tarihi (YYYY-MM-DD olmalı)")
			}
			installments = append(installments, ledger.InstallmentInput{
				Amount:  inst.Amount,
				DueDate: instDue,
			})
		}

		sale, err := ledger.CreateSale(database.DB, ledger.SaleInput{
			CustomerID:    body.CustomerID,
			PaymentMethod: body.PaymentMethod,
			PaymentStatus: models.PaymentStatus(body.PaymentStatus),
			DueDate:       dueDate,
			Items:         items,
			Installments:  installments,
			CreatedBy:     userID,
		})
		if err != nil {
			return ledgerError(err)
		}

		// Audit log
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "sale",
			EntityID:    sale.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Satış oluşturuldu: %s - %s - %s TL", sale.InvoiceNo, sale.Customer.Name, sale.TotalAmount.StringFixed(2)),
			After:       sale,
		})

		cache.InvalidateDashboard(c.Context())

		return c.Status(fiber.StatusCreated).JSON(saleResponse(sale))
	}
}

// GET /api/sales/form-data
// Satış formu için: müşteriler ve stoğu olan ürünler.
func SaleFormDataHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var customers []models.Customer
		if err := database.DB.Order("name asc").Find(&customers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteriler listelenemedi")
		}

		var products []models.Product
		if err := database.DB.Where("current_stock > 0").Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		type customerOption struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
			Type string `json:"type"`
		}
		type productOption struct {
			ID           uint            `json:"id"`
			Name         string          `json:"name"`
			SKU          string          `json:"sku"`
			SellingPrice decimal.Decimal `json:"selling_price"`
			CurrentStock decimal.Decimal `json:"current_stock"`
		}

		customerOptions := make([]customerOption, 0, len(customers))
		for _, cust := range customers {
			customerOptions = append(customerOptions, customerOption{
				ID:   cust.ID,
				Name: cust.Name,
				Type: string(cust.Type),
			})
		}
		productOptions := make([]productOption, 0, len(products))
		for _, p := range products {
			productOptions = append(productOptions, productOption{
				ID:           p.ID,
				Name:         p.Name,
				SKU:          p.SKU,
				SellingPrice: p.SellingPrice,
				CurrentStock: p.CurrentStock,
			})
		}

		return c.JSON(fiber.Map{
			"customers": customerOptions,
			"products":  productOptions,
		})
	}
}
