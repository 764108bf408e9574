package customer

import (
	"fmt"
	"strconv"
	"strings"

	"boya-backend/internal/audit"
	"boya-backend/internal/auth"
	"boya-backend/internal/database"
	"boya-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CustomerResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Phone       string          `json:"phone"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	SalesCount  int64           `json:"sales_count"`
	OpenBalance decimal.Decimal `json:"open_balance"` // ödenmemiş bakiye toplamı
	CreatedAt   string          `json:"created_at"`
}

type CustomerRequest struct {
	Name        string          `json:"name"`
	Type        string          `json:"type"` // retail, wholesale
	Phone       string          `json:"phone"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
}

func getUserInfo(c *fiber.Ctx) (uint, string, error) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return 0, "", err
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
	}

	return userID, user.Name, nil
}

func customerResponse(cust models.Customer) CustomerResponse {
	var salesCount int64
	database.DB.Model(&models.Sale{}).Where("customer_id = ?", cust.ID).Count(&salesCount)

	type balanceRow struct {
		Total decimal.Decimal
	}
	var row balanceRow
	database.DB.Model(&models.Sale{}).
		Select("COALESCE(SUM(balance_due), 0) as total").
		Where("customer_id = ?", cust.ID).
		Scan(&row)

	return CustomerResponse{
		ID:          cust.ID,
		Name:        cust.Name,
		Type:        string(cust.Type),
		Phone:       cust.Phone,
		CreditLimit: cust.CreditLimit,
		SalesCount:  salesCount,
		OpenBalance: row.Total,
		CreatedAt:   cust.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/customers
func ListCustomersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := database.DB.Order("name asc")
		if custType := c.Query("type"); custType != "" {
			query = query.Where("type = ?", custType)
		}

		var customers []models.Customer
		if err := query.Find(&customers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteriler listelenemedi")
		}

		res := make([]CustomerResponse, 0, len(customers))
		for _, cust := range customers {
			res = append(res, customerResponse(cust))
		}
		return c.JSON(res)
	}
}

// POST /api/customers
func CreateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name zorunlu")
		}
		custType := models.CustomerType(body.Type)
		if custType == "" {
			custType = models.CustomerRetail
		}
		if custType != models.CustomerRetail && custType != models.CustomerWholesale {
			return fiber.NewError(fiber.StatusBadRequest, "Type retail veya wholesale olmalı")
		}
		if body.CreditLimit.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Kredi limiti negatif olamaz")
		}

		customer := models.Customer{
			Name:        body.Name,
			Type:        custType,
			Phone:       strings.TrimSpace(body.Phone),
			CreditLimit: body.CreditLimit,
		}
		if err := database.DB.Create(&customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteri oluşturulamadı")
		}

		// Audit log
		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "customer",
				EntityID:    customer.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Müşteri eklendi: %s (%s)", customer.Name, customer.Type),
				After:       customer,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(customerResponse(customer))
	}
}

// PUT /api/customers/:id
func UpdateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
		}

		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Müşteri bulunamadı")
		}

		var body CustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name zorunlu")
		}
		custType := models.CustomerType(body.Type)
		if custType != models.CustomerRetail && custType != models.CustomerWholesale {
			return fiber.NewError(fiber.StatusBadRequest, "Type retail veya wholesale olmalı")
		}
		if body.CreditLimit.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Kredi limiti negatif olamaz")
		}

		before := customer
		customer.Name = body.Name
		customer.Type = custType
		customer.Phone = strings.TrimSpace(body.Phone)
		customer.CreditLimit = body.CreditLimit

		if err := database.DB.Save(&customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteri güncellenemedi")
		}

		// Audit log
		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "customer",
				EntityID:    customer.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Müşteri güncellendi: %s", customer.Name),
				Before:      before,
				After:       customer,
			})
		}

		return c.JSON(customerResponse(customer))
	}
}

// DELETE /api/customers/:id
// Satışı olan müşteri silinemez.
func DeleteCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
		}

		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Müşteri bulunamadı")
		}

		var salesCount int64
		database.DB.Model(&models.Sale{}).Where("customer_id = ?", customer.ID).Count(&salesCount)
		if salesCount > 0 {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("Müşteri silinemez: %d satış kaydı var", salesCount))
		}

		if err := database.DB.Delete(&customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteri silinemedi")
		}

		// Audit log
		userID, userName, uErr := getUserInfo(c)
		if uErr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "customer",
				EntityID:    customer.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Müşteri silindi: %s", customer.Name),
				Before:      customer,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
