package sales

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"boya-backend/internal/audit"
	"boya-backend/internal/cache"
	"boya-backend/internal/database"
	"boya-backend/internal/ledger"
	"boya-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type InstallmentListItem struct {
	InstallmentResponse
	InvoiceNo string `json:"invoice_no"`
	Customer  string `json:"customer"`
}

func installmentListItem(inst models.Installment) InstallmentListItem {
	return InstallmentListItem{
		InstallmentResponse: installmentResponse(inst),
		InvoiceNo:           inst.Sale.InvoiceNo,
		Customer:            inst.Sale.Customer.Name,
	}
}

// GET /api/installments
// Filtreler: status, customer_id. Vade tarihine göre sıralı.
func ListInstallmentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := database.DB.
			Preload("Sale").
			Preload("Sale.Customer").
			Joins("JOIN sales ON sales.id = installments.sale_id").
			Order("installments.due_date asc")

		if status := c.Query("status"); status != "" {
			query = query.Where("installments.status = ?", status)
		}
		if customerID, err := strconv.Atoi(c.Query("customer_id")); err == nil && customerID > 0 {
			query = query.Where("sales.customer_id = ?", customerID)
		}

		var installments []models.Installment
		if err := query.Find(&installments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Taksitler listelenemedi")
		}

		res := make([]InstallmentListItem, 0, len(installments))
		for _, inst := range installments {
			res = append(res, installmentListItem(inst))
		}
		return c.JSON(res)
	}
}

// GET /api/installments/due-soon
// Önümüzdeki 7 gün içinde vadesi dolan bekleyen taksitler; gecikmiş
// taksitler de dahildir.
func DueSoonInstallmentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cutoff := time.Now().AddDate(0, 0, 7)

		var installments []models.Installment
		if err := database.DB.
			Preload("Sale").
			Preload("Sale.Customer").
			Where("status = ? AND due_date <= ?", models.InstallmentPending, cutoff).
			Order("due_date asc").
			Find(&installments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Taksitler listelenemedi")
		}

		now := time.Now()
		type dueSoonItem struct {
			InstallmentListItem
			Overdue bool `json:"overdue"`
		}
		res := make([]dueSoonItem, 0, len(installments))
		for _, inst := range installments {
			res = append(res, dueSoonItem{
				InstallmentListItem: installmentListItem(inst),
				Overdue:             inst.DueDate.Before(now),
			})
		}
		return c.JSON(res)
	}
}

// POST /api/installments/:id/pay
// Taksit ödemesi: taksit paid olur, satışın balance_due'su düşer ve 0'a
// inince payment_status paid'e çekilir. Ödenmiş taksit tekrar ödenemez.
func PayInstallmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
		}

		var body struct {
			Notes string `json:"notes"`
		}
		// Body opsiyonel
		_ = c.BodyParser(&body)

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		installment, err := ledger.PayInstallment(database.DB, uint(id), strings.TrimSpace(body.Notes), userID)
		if err != nil {
			return ledgerError(err)
		}

		// Audit log
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "installment",
			EntityID:    installment.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Taksit ödendi: %s - %s TL (%s)", installment.Sale.InvoiceNo, installment.Amount.StringFixed(2), installment.Sale.Customer.Name),
			After:       installment,
		})

		cache.InvalidateDashboard(c.Context())

		return c.JSON(fiber.Map{
			"installment": installmentListItem(*installment),
			"balance_due": installment.Sale.BalanceDue,
			"sale_status": installment.Sale.PaymentStatus,
		})
	}
}
