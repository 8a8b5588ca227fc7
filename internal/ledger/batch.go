package ledger

import (
	"strings"
	"time"

	"eczane-backend/internal/models"
)

// BatchKey: parti kimliği değer tipi. İki parti, parti numaraları küçük/büyük
// harf farkı gözetmeksizin eşit VE son kullanma tarihleri aynı takvim gününe
// denk geliyorsa aynıdır.
type BatchKey struct {
	No     string    // küçük harfe çevrilmiş, kırpılmış parti numarası
	Expiry time.Time // güne yuvarlanmış (UTC)
}

// Pool politikasındaki ürünlerin tüm stoğunun toplandığı tek parti.
const DefaultBatchNo = "DEFAULT"

func NewBatchKey(batchNo string, expiry time.Time) BatchKey {
	return BatchKey{
		No:     strings.ToLower(strings.TrimSpace(batchNo)),
		Expiry: truncateToDay(expiry),
	}
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Matches: parti bu anahtara mı ait?
func (k BatchKey) Matches(b *models.ProductBatch) bool {
	return NewBatchKey(b.BatchNo, b.ExpiryDate) == k
}

// FindBatch: ürünün parti listesinde anahtarla eşleşen partiyi bulur.
// Slice içine işaretçi döner; değişiklikler üründe kalıcı olur.
func FindBatch(p *models.Product, key BatchKey) *models.ProductBatch {
	for i := range p.Batches {
		if key.Matches(&p.Batches[i]) {
			return &p.Batches[i]
		}
	}
	return nil
}

// UpsertIncrease: parti bulunursa miktarını artırır; maliyet/fiyat alanları
// sadece pozitif artışta tazelenir (alış her zaman maliyet esasını yeniler,
// salt düzeltme yenilemez). Parti yoksa ve qty pozitifse yeni parti açar;
// negatif/sıfır artış ile parti açılamaz.
func UpsertIncrease(p *models.Product, batchNo string, expiry time.Time, qty, unitCost, unitPrice float64) error {
	key := NewBatchKey(batchNo, expiry)

	if b := FindBatch(p, key); b != nil {
		b.Qty += qty
		if qty > 0 {
			if unitCost >= 0 {
				b.UnitCost = unitCost
			}
			if unitPrice >= 0 {
				b.UnitPrice = unitPrice
			}
		}
		return nil
	}

	if qty <= 0 {
		return newError(KindBatchNotFound, "Parti bulunamadı: %s", strings.TrimSpace(batchNo))
	}

	if unitCost < 0 {
		unitCost = 0
	}
	if unitPrice < 0 {
		unitPrice = 0
	}
	p.Batches = append(p.Batches, models.ProductBatch{
		ProductID:  p.ID,
		BatchNo:    strings.TrimSpace(batchNo),
		ExpiryDate: key.Expiry,
		Qty:        qty,
		UnitCost:   unitCost,
		UnitPrice:  unitPrice,
	})
	return nil
}

// Decrease: parti miktarını azaltır, sonuç negatif olacaksa hiçbir değişiklik
// yapmadan hata döner. Yeni miktarı döndürür.
func Decrease(p *models.Product, key BatchKey, qty float64) (float64, error) {
	b := FindBatch(p, key)
	if b == nil {
		return 0, newError(KindBatchNotFound, "Parti bulunamadı: %s", key.No)
	}
	next := b.Qty - qty
	if next < 0 {
		return 0, newError(KindInsufficientStock, "Yetersiz stok: parti %s (mevcut %.4f, istenen %.4f)", b.BatchNo, b.Qty, qty)
	}
	b.Qty = next
	return next, nil
}

// TotalQuantity: tüm partilerin toplam miktarı (stok birimi cinsinden).
// Eldeki stok gösterimi ve kritik stok karşılaştırması bunu kullanır.
func TotalQuantity(p *models.Product) float64 {
	var total float64
	for i := range p.Batches {
		total += p.Batches[i].Qty
	}
	return total
}
