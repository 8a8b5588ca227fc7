package ledger

import (
	"fmt"
	"strings"
	"time"

	"eczane-backend/internal/models"

	"gorm.io/gorm"
)

type PurchaseItemInput struct {
	ProductID  uint
	BatchNo    string
	ExpiryDate time.Time
	Qty        float64 // girilen miktar (QtyUnit cinsinden)
	QtyUnit    string  // strip | piece; boşsa ürünün stok birimi
	UnitCost   float64 // girilen birim başına
	UnitPrice  float64
}

type PurchaseInput struct {
	SupplierID  *uint
	InvoiceNo   string
	PurchasedAt time.Time
	Notes       string
	Items       []PurchaseItemInput
}

// ApplyPurchase: alışı tek bir veritabanı transaction'ı içinde uygular.
// Önce tüm satırlar doğrulanır ve tüm ürünler çözülür, sonra parti
// mutasyonları yapılır, en son değiştirilemez Purchase kaydı yazılır.
// Herhangi bir satır hata verirse hiçbir değişiklik kalıcı olmaz.
func ApplyPurchase(db *gorm.DB, in PurchaseInput) (*models.Purchase, error) {
	if len(in.Items) == 0 {
		return nil, newError(KindInvalidQuantity, "En az bir alış satırı gerekli")
	}
	for i, it := range in.Items {
		if !isFinite(it.Qty) || it.Qty <= 0 {
			return nil, newError(KindInvalidQuantity, "Satır %d: miktar pozitif olmalı", i+1)
		}
		if !isFinite(it.UnitCost) || it.UnitCost < 0 || !isFinite(it.UnitPrice) || it.UnitPrice < 0 {
			return nil, newError(KindInvalidQuantity, "Satır %d: birim fiyatlar negatif olamaz", i+1)
		}
	}

	purchasedAt := in.PurchasedAt
	if purchasedAt.IsZero() {
		purchasedAt = time.Now()
	}

	purchase := &models.Purchase{
		SupplierID:  in.SupplierID,
		InvoiceNo:   strings.TrimSpace(in.InvoiceNo),
		Notes:       in.Notes,
		PurchasedAt: purchasedAt,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, 0, len(in.Items))
		for _, it := range in.Items {
			ids = append(ids, it.ProductID)
		}
		products, err := loadProducts(tx, ids)
		if err != nil {
			return err
		}

		var totalCost float64
		items := make([]models.PurchaseItem, 0, len(in.Items))

		for i, it := range in.Items {
			p := products[it.ProductID]

			unit := it.QtyUnit
			if unit == "" {
				unit = p.Unit
			}

			batchNo := strings.TrimSpace(it.BatchNo)
			expiry := it.ExpiryDate
			if p.SalePolicy == models.SalePolicyPool {
				// Pool ürünlerinde tüm stok tek DEFAULT partide toplanır
				batchNo = DefaultBatchNo
				expiry = time.Time{}
			} else if batchNo == "" {
				return newError(KindInvalidQuantity, "Satır %d: parti numarası zorunlu", i+1)
			}

			qtyBase := ToStockUnits(p, it.Qty, unit)
			unitCostStock := PerStockUnit(p, it.UnitCost, unit)
			unitPriceStock := PerStockUnit(p, it.UnitPrice, unit)

			if err := UpsertIncrease(p, batchNo, expiry, qtyBase, unitCostStock, unitPriceStock); err != nil {
				return err
			}

			totalCost += it.Qty * it.UnitCost
			items = append(items, models.PurchaseItem{
				ProductID:         p.ID,
				BatchNo:           batchNo,
				ExpiryDate:        NewBatchKey(batchNo, expiry).Expiry,
				Qty:               it.Qty,
				QtyUnit:           unit,
				QtyBase:           qtyBase,
				UnitCost:          it.UnitCost,
				UnitPrice:         it.UnitPrice,
				PiecesPerStrip:    piecesPerStrip(p),
				UnitCostPerPiece:  PerPiece(p, it.UnitCost, unit),
				UnitPricePerPiece: PerPiece(p, it.UnitPrice, unit),
			})
		}

		for _, p := range products {
			if err := saveBatches(tx, p); err != nil {
				return err
			}
		}

		purchase.Items = items
		purchase.TotalCost = totalCost
		if err := tx.Create(purchase).Error; err != nil {
			return fmt.Errorf("alış kaydı oluşturulamadı: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// ReversePurchase: kayıtlı bir alışın stok etkisini birebir geri alır ve
// kaydı siler. Geri alma QtyBase üzerinden yapılır; ürünün dönüşüm katsayısı
// sonradan değişmiş olsa bile düşülen miktar alıştakiyle aynıdır. Tek bir
// satır bile partiyi eksiye düşürecekse işlemin TAMAMI reddedilir.
func ReversePurchase(db *gorm.DB, purchaseID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var purchase models.Purchase
		if err := tx.Preload("Items").First(&purchase, "id = ?", purchaseID).Error; err != nil {
			return firstOrNotFound(err, "Alış", purchaseID)
		}

		ids := make([]uint, 0, len(purchase.Items))
		for _, it := range purchase.Items {
			ids = append(ids, it.ProductID)
		}
		products, err := loadProducts(tx, ids)
		if err != nil {
			return err
		}

		for _, it := range purchase.Items {
			p := products[it.ProductID]
			key := NewBatchKey(it.BatchNo, it.ExpiryDate)
			if _, err := Decrease(p, key, it.QtyBase); err != nil {
				if IsKind(err, KindInsufficientStock) {
					return newError(KindWouldGoNegative,
						"Alış geri alınamaz: parti %s eksiye düşerdi", it.BatchNo)
				}
				return err
			}
		}

		for _, p := range products {
			if err := saveBatches(tx, p); err != nil {
				return err
			}
		}

		if err := tx.Delete(&purchase).Error; err != nil {
			return fmt.Errorf("alış kaydı silinemedi: %w", err)
		}
		return nil
	})
}
