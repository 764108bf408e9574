package ledger

import (
	"errors"
	"fmt"

	"boya-backend/internal/models"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoActiveRecipe - Üretimi istenen ürünün aktif reçetesi yok.
	ErrNoActiveRecipe = errors.New("bu ürün için aktif reçete bulunamadı")

	// ErrAlreadyPaid - Ödenmiş taksit tekrar ödenmeye çalışıldı.
	ErrAlreadyPaid = errors.New("taksit zaten ödenmiş")
)

// InsufficientStockError - İstenen miktar mevcut stoğu aşıyor.
// Hangi kalem, ne kadar gerekiyordu ve ne kadar vardı bilgisini taşır.
type InsufficientStockError struct {
	Kind      models.StockItemKind
	ItemID    uint
	Name      string
	Unit      string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Yetersiz stok: %s. Gerekli %s%s, mevcut %s%s",
		e.Name, e.Required.String(), e.Unit, e.Available.String(), e.Unit)
}

// ValidationError - Transaction başlamadan önce yakalanan geçersiz girdi.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError - Referans verilen kayıt yok.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s bulunamadı (ID: %d)", e.Entity, e.ID)
}
