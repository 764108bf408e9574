package ledger

import (
	"errors"

	"boya-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Requirement - 1 üretim talebi için gereken toplam hammadde miktarı.
type Requirement struct {
	RawMaterialID uint            `json:"raw_material_id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	Required      decimal.Decimal `json:"required"`
}

// Resolve - Ürün + üretilecek miktarı hammadde ihtiyaç listesine açar:
// required = recipe_item.quantity_required * qtyToProduce.
// Aktif reçete yoksa ErrNoActiveRecipe döner.
func Resolve(db *gorm.DB, productID uint, qtyToProduce decimal.Decimal) ([]Requirement, error) {
	if qtyToProduce.LessThanOrEqual(decimal.Zero) {
		return nil, validationErrf("üretim miktarı 0'dan büyük olmalı")
	}

	var recipe models.Recipe
	err := db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("recipe_items.id")
	}).Preload("Items.RawMaterial").
		Where("product_id = ? AND is_active = ?", productID, true).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveRecipe
		}
		return nil, err
	}

	// Aynı hammadde birden fazla kalemde geçiyorsa miktarlar tek satırda
	// toplanır; üretimde her hammadde satırı bir kez kilitlenip bir kez düşülür.
	requirements := make([]Requirement, 0, len(recipe.Items))
	index := make(map[uint]int, len(recipe.Items))
	for _, item := range recipe.Items {
		required := item.QuantityRequired.Mul(qtyToProduce)
		if i, ok := index[item.RawMaterialID]; ok {
			requirements[i].Required = requirements[i].Required.Add(required)
			continue
		}
		index[item.RawMaterialID] = len(requirements)
		requirements = append(requirements, Requirement{
			RawMaterialID: item.RawMaterialID,
			Name:          item.RawMaterial.Name,
			Unit:          item.RawMaterial.Unit,
			Required:      required,
		})
	}

	return requirements, nil
}

// RecipeItemInput - Reçete kalemi girdisi (oluşturma ve düzenleme için).
type RecipeItemInput struct {
	RawMaterialID    uint            `json:"raw_material_id"`
	QuantityRequired decimal.Decimal `json:"quantity_required"`
}

// ReplaceRecipeItems - Reçete düzenlemesi: mevcut kalem seti silinir ve
// yenisiyle değiştirilir, ikisi tek transaction içinde. Yarıda kalan bir
// hata eski kalemleri olduğu gibi bırakır; aktif bir reçete asla kalemsiz
// kalmaz.
func ReplaceRecipeItems(db *gorm.DB, recipeID uint, items []RecipeItemInput) error {
	if len(items) == 0 {
		return validationErrf("reçetede en az bir kalem olmalı")
	}
	seen := make(map[uint]bool, len(items))
	for _, item := range items {
		if item.QuantityRequired.LessThanOrEqual(decimal.Zero) {
			return validationErrf("kalem miktarı 0'dan büyük olmalı (hammadde ID: %d)", item.RawMaterialID)
		}
		if seen[item.RawMaterialID] {
			return validationErrf("aynı hammadde birden fazla kalemde yer alamaz (hammadde ID: %d)", item.RawMaterialID)
		}
		seen[item.RawMaterialID] = true
	}

	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	// Reçete satırı kilitlenir; eşzamanlı iki düzenleme sırayla işler,
	// iki kalem setinin birleşimi asla commit edilmez.
	var recipe models.Recipe
	if err := lockForUpdate(tx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "Reçete", ID: recipeID}
		}
		return err
	}

	// Hammaddeler mevcut mu?
	for _, item := range items {
		var count int64
		if err := tx.Model(&models.RawMaterial{}).Where("id = ?", item.RawMaterialID).Count(&count).Error; err != nil {
			tx.Rollback()
			return err
		}
		if count == 0 {
			tx.Rollback()
			return &NotFoundError{Entity: "Hammadde", ID: item.RawMaterialID}
		}
	}

	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeItem{}).Error; err != nil {
		tx.Rollback()
		return err
	}

	for _, item := range items {
		recipeItem := models.RecipeItem{
			RecipeID:         recipeID,
			RawMaterialID:    item.RawMaterialID,
			QuantityRequired: item.QuantityRequired,
		}
		if err := tx.Create(&recipeItem).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}
