package ledger

import (
	"math/rand/v2"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate - Okunacak satıra SELECT ... FOR UPDATE kilidi ekler.
// Kilit transaction commit/rollback olana kadar tutulur; aynı stok
// satırına dokunan eşzamanlı üretim/satış işlemlerini serileştirir.
// SQLite (lokal mod ve testler) FOR UPDATE sözdizimini tanımaz ve zaten
// tek yazar çalışır, o yüzden kilit sadece Postgres'te uygulanır.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomCode - "INV-XXXXXXXX" / "BATCH-XXXXXX" tarzı kodlar için.
func randomCode(prefix string, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return prefix + string(b)
}
