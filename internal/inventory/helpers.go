package inventory

import (
	"errors"

	"boya-backend/internal/auth"
	"boya-backend/internal/database"
	"boya-backend/internal/ledger"
	"boya-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Yardımcı: Kullanıcı bilgilerini al
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

// ledgerError - Ledger'ın tipli hatalarını HTTP durum kodlarına çevirir.
func ledgerError(err error) error {
	var insufficient *ledger.InsufficientStockError
	var notFound *ledger.NotFoundError
	var invalid *ledger.ValidationError

	switch {
	case errors.As(err, &insufficient):
		return fiber.NewError(fiber.StatusConflict, insufficient.Error())
	case errors.As(err, &notFound):
		return fiber.NewError(fiber.StatusNotFound, notFound.Error())
	case errors.As(err, &invalid):
		return fiber.NewError(fiber.StatusBadRequest, invalid.Error())
	case errors.Is(err, ledger.ErrNoActiveRecipe):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrAlreadyPaid):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Beklenmeyen veritabanı hatası")
}
