package inventory

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
)

// POST /api/inventory/restock/parse-invoice
// Fatura text'ini parse eder, eşleşen hammaddelerle kalem listesi döndürür.
// Frontend'den fatura text'i JSON body'de "text" field'ı olarak gönderilir
func ParseInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Text string `json:"text"`
		}
		if err := c.BodyParser(&body); err != nil {
			log.Printf("Fatura parse request body parse error: %v", err)
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi. 'text' field'ı gönderilmelidir.")
		}

		if body.Text == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Fatura text'i boş olamaz")
		}

		result, err := ParseSupplierInvoice(body.Text)
		if err != nil {
			log.Printf("Fatura parse error: %v", err)
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Fatura parse edilemedi: %v", err))
		}

		log.Printf("Fatura parse başarılı, %d kalem bulundu", len(result.Items))
		return c.JSON(result)
	}
}
