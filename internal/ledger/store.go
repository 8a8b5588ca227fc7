package ledger

import (
	"errors"
	"fmt"

	"eczane-backend/internal/models"

	"gorm.io/gorm"
)

// loadProducts: satırlardaki tüm ürünleri partileriyle birlikte TEK seferde
// yükler. Çözülemeyen bir id varsa hiçbir değişiklik yapılmadan hata döner;
// doğrulama her zaman mutasyondan önce biter.
func loadProducts(tx *gorm.DB, ids []uint) (map[uint]*models.Product, error) {
	seen := make(map[uint]bool, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	var products []models.Product
	if err := tx.Preload("Batches").Find(&products, "id IN ?", unique).Error; err != nil {
		return nil, fmt.Errorf("ürünler yüklenemedi: %w", err)
	}

	byID := make(map[uint]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for _, id := range unique {
		if byID[id] == nil {
			return nil, newError(KindProductNotFound, "Ürün bulunamadı (ID: %d)", id)
		}
	}
	return byID, nil
}

// saveBatches: üründe bellekte yapılan parti değişikliklerini yazar.
// Yeni partiler (ID'si 0 olanlar) insert, mevcutlar update edilir.
// Partiler hiçbir zaman silinmez, sıfırda kalabilir.
func saveBatches(tx *gorm.DB, p *models.Product) error {
	for i := range p.Batches {
		b := &p.Batches[i]
		b.ProductID = p.ID
		var err error
		if b.ID == 0 {
			err = tx.Create(b).Error
		} else {
			err = tx.Save(b).Error
		}
		if err != nil {
			return fmt.Errorf("parti kaydedilemedi (ürün %d, parti %s): %w", p.ID, b.BatchNo, err)
		}
	}
	return nil
}

// firstOrNotFound: kayıt yoksa ledger türünde NotFound döner.
func firstOrNotFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(KindNotFound, "%s bulunamadı (ID: %d)", what, id)
	}
	return err
}
