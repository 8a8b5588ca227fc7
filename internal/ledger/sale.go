package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"eczane-backend/internal/models"

	"gorm.io/gorm"
)

// Kayan nokta kalıntılarının "yetersiz stok" sayılmaması için tolerans.
const qtyEpsilon = 1e-9

type SaleItemInput struct {
	ProductID uint
	Qty       float64 // girilen miktar (QtyUnit cinsinden)
	QtyUnit   string  // strip | piece; boşsa şerit ürünlerde piece
	UnitPrice float64 // girilen birim başına satış fiyatı
}

type SaleInput struct {
	CustomerID    *uint
	CustomerName  string
	PaymentMethod string
	SoldAt        time.Time
	Notes         string
	Items         []SaleItemInput
}

// ApplySale: satışı tek bir transaction içinde uygular. Tüketim sırası ürünün
// politikasına göre belirlenir:
//
//   - fefo: miktarı pozitif partiler son kullanma tarihine göre artan sırada
//     gezilir, istenen miktar karşılanana kadar her partiden alınır. Dokunulan
//     her parti ayrı bir satış satırı üretir. Toplam stok yetmezse satırın
//     tamamı reddedilir ve hiçbir değişiklik kalıcı olmaz.
//   - pool: tek DEFAULT partiden min(mevcut, istenen) düşülür, stok sıfırın
//     altına inmez ama fatura TAM istenen miktar üzerinden kesilir. Maliyet
//     esası DEFAULT partinin maliyetidir (son alışta tazelenir); parti hiç
//     açılmamışsa ürünün varsayılan alış fiyatı kullanılır.
func ApplySale(db *gorm.DB, in SaleInput) (*models.Sale, error) {
	if len(in.Items) == 0 {
		return nil, newError(KindInvalidQuantity, "En az bir satış satırı gerekli")
	}
	for i, it := range in.Items {
		if !isFinite(it.Qty) || it.Qty <= 0 {
			return nil, newError(KindInvalidQuantity, "Satır %d: miktar pozitif olmalı", i+1)
		}
		if !isFinite(it.UnitPrice) || it.UnitPrice < 0 {
			return nil, newError(KindInvalidQuantity, "Satır %d: birim fiyat negatif olamaz", i+1)
		}
	}

	soldAt := in.SoldAt
	if soldAt.IsZero() {
		soldAt = time.Now()
	}
	paymentMethod := strings.TrimSpace(in.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCash
	}

	sale := &models.Sale{
		CustomerID:    in.CustomerID,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		PaymentMethod: paymentMethod,
		Notes:         in.Notes,
		SoldAt:        soldAt,
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

		var totalRevenue, totalCost float64
		var items []models.SaleItem

		addLine := func(line models.SaleItem) {
			line.LineProfit = line.LineRevenue - line.LineCost
			totalRevenue += line.LineRevenue
			totalCost += line.LineCost
			items = append(items, line)
		}

		for _, it := range in.Items {
			p := products[it.ProductID]

			unit := it.QtyUnit
			if unit == "" {
				if isStripProduct(p) {
					unit = models.UnitPiece
				} else {
					unit = p.Unit
				}
			}

			stockQty := ToStockUnits(p, it.Qty, unit)
			pricePerPiece := PerPiece(p, it.UnitPrice, unit)

			switch p.SalePolicy {
			case models.SalePolicyPool:
				// Tek havuz: stok tabanda kalır, fatura tam miktar üzerinden.
				// Maliyet esası DEFAULT partinin maliyetidir; alış her seferinde
				// onu tazelediği için bu, son bilinen alış maliyetidir. Ürün hiç
				// alış görmemişse varsayılan alış fiyatına düşülür.
				key := NewBatchKey(DefaultBatchNo, time.Time{})
				consumed := 0.0
				lastCost := p.PurchasePriceDefault
				if b := FindBatch(p, key); b != nil {
					lastCost = b.UnitCost
					consumed = stockQty
					if b.Qty < consumed {
						consumed = b.Qty
					}
					b.Qty -= consumed
				}
				costPerPiece := PerPiece(p, lastCost, p.Unit)
				pieces := ToPieces(p, stockQty)
				addLine(models.SaleItem{
					ProductID:         p.ID,
					BatchNo:           DefaultBatchNo,
					ExpiryDate:        key.Expiry,
					Qty:               consumed,
					QtyUnit:           unit,
					QtyEntered:        it.Qty,
					UnitPrice:         it.UnitPrice,
					UnitCost:          lastCost,
					UnitPricePerPiece: pricePerPiece,
					UnitCostPerPiece:  costPerPiece,
					PiecesSold:        pieces,
					LineRevenue:       pieces * pricePerPiece,
					LineCost:          pieces * costPerPiece,
				})

			default: // fefo
				order := make([]*models.ProductBatch, 0, len(p.Batches))
				for i := range p.Batches {
					if p.Batches[i].Qty > 0 {
						order = append(order, &p.Batches[i])
					}
				}
				sort.SliceStable(order, func(i, j int) bool {
					return order[i].ExpiryDate.Before(order[j].ExpiryDate)
				})

				remaining := stockQty
				for _, b := range order {
					if remaining <= qtyEpsilon {
						break
					}
					take := remaining
					if b.Qty < take {
						take = b.Qty
					}
					b.Qty -= take
					remaining -= take

					costPerPiece := PerPiece(p, b.UnitCost, p.Unit)
					pieces := ToPieces(p, take)
					addLine(models.SaleItem{
						ProductID:         p.ID,
						BatchNo:           b.BatchNo,
						ExpiryDate:        b.ExpiryDate,
						Qty:               take,
						QtyUnit:           unit,
						QtyEntered:        ToEnteredUnit(p, take, unit),
						UnitPrice:         it.UnitPrice,
						UnitCost:          b.UnitCost,
						UnitPricePerPiece: pricePerPiece,
						UnitCostPerPiece:  costPerPiece,
						PiecesSold:        pieces,
						LineRevenue:       pieces * pricePerPiece,
						LineCost:          pieces * costPerPiece,
					})
				}
				if remaining > qtyEpsilon {
					return newError(KindInsufficientStock, "Yetersiz stok: %s", p.Name)
				}
			}
		}

		for _, p := range products {
			if err := saveBatches(tx, p); err != nil {
				return err
			}
		}

		sale.Items = items
		sale.TotalRevenue = totalRevenue
		sale.TotalCost = totalCost
		sale.Profit = totalRevenue - totalCost
		if err := tx.Create(sale).Error; err != nil {
			return fmt.Errorf("satış kaydı oluşturulamadı: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// ReverseSale: kayıtlı bir satışın stok etkisini geri alır ve kaydı siler.
// Düşülen parti bulunursa miktar geri eklenir; parti ortadan kalkmışsa
// satırdaki anlık görüntüden yeniden oluşturulur. Satış geri alma bu yüzden
// eksik parti nedeniyle asla başarısız olmaz; negatif stok koruması yalnız
// alış geri almada vardır.
func ReverseSale(db *gorm.DB, saleID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := tx.Preload("Items").First(&sale, "id = ?", saleID).Error; err != nil {
			return firstOrNotFound(err, "Satış", saleID)
		}

		ids := make([]uint, 0, len(sale.Items))
		for _, it := range sale.Items {
			ids = append(ids, it.ProductID)
		}
		products, err := loadProducts(tx, ids)
		if err != nil {
			return err
		}

		for _, it := range sale.Items {
			if it.Qty <= 0 {
				continue // pool satışında stok hiç düşmemiş olabilir
			}
			p := products[it.ProductID]
			key := NewBatchKey(it.BatchNo, it.ExpiryDate)

			if b := FindBatch(p, key); b != nil {
				b.Qty += it.Qty
				continue
			}

			// Parti silinmiş/birleşmiş: anlık görüntüden yeniden oluştur
			batchNo := strings.TrimSpace(it.BatchNo)
			if batchNo == "" {
				batchNo = "UNKNOWN"
			}
			expiry := it.ExpiryDate
			if expiry.IsZero() && p.SalePolicy != models.SalePolicyPool {
				expiry = time.Now()
			}
			p.Batches = append(p.Batches, models.ProductBatch{
				ProductID:  p.ID,
				BatchNo:    batchNo,
				ExpiryDate: NewBatchKey(batchNo, expiry).Expiry,
				Qty:        it.Qty,
				UnitCost:   it.UnitCost,
				UnitPrice:  PerStockUnit(p, it.UnitPricePerPiece, models.UnitPiece),
			})
		}

		for _, p := range products {
			if err := saveBatches(tx, p); err != nil {
				return err
			}
		}

		if err := tx.Delete(&sale).Error; err != nil {
			return fmt.Errorf("satış kaydı silinemedi: %w", err)
		}
		return nil
	})
}
