package ledger

import (
	"time"

	"gorm.io/gorm"
)

type AdjustInput struct {
	ProductID  uint
	BatchNo    string
	ExpiryDate time.Time
	QtyChange  float64 // stok birimi cinsinden; pozitif artış, negatif düzeltme
	UnitCost   *float64
	UnitPrice  *float64
}

// AdjustBatch: manuel stok düzeltmesi. Alış/satışla aynı parti primitifleri
// üzerinden yürür: pozitif değişim UpsertIncrease (maliyet/fiyat verilmişse
// tazelenir), negatif değişim Decrease (parti yoksa veya stok eksiye
// düşecekse reddedilir).
func AdjustBatch(db *gorm.DB, in AdjustInput) error {
	if !isFinite(in.QtyChange) || in.QtyChange == 0 {
		return newError(KindInvalidQuantity, "Geçersiz miktar değişimi")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		products, err := loadProducts(tx, []uint{in.ProductID})
		if err != nil {
			return err
		}
		p := products[in.ProductID]

		key := NewBatchKey(in.BatchNo, in.ExpiryDate)

		if in.QtyChange > 0 {
			unitCost, unitPrice := -1.0, -1.0 // negatif = eldeki değeri koru
			if in.UnitCost != nil && *in.UnitCost >= 0 {
				unitCost = *in.UnitCost
			}
			if in.UnitPrice != nil && *in.UnitPrice >= 0 {
				unitPrice = *in.UnitPrice
			}
			if err := UpsertIncrease(p, in.BatchNo, in.ExpiryDate, in.QtyChange, unitCost, unitPrice); err != nil {
				return err
			}
		} else {
			if _, err := Decrease(p, key, -in.QtyChange); err != nil {
				return err
			}
		}

		return saveBatches(tx, p)
	})
}
