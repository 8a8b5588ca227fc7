package ledger

import (
	"testing"

	"eczane-backend/internal/models"
)

func TestApplyPurchaseSimple(t *testing.T) {
	db := newTestDB(t)
	p := createProduct(t, db, &models.Product{Name: "Parol 500mg"})

	purchase, err := ApplyPurchase(db, PurchaseInput{
		InvoiceNo: "FTR-001",
		Items: []PurchaseItemInput{
			{ProductID: p.ID, BatchNo: "B1", ExpiryDate: date(2026, 1, 1), Qty: 10, UnitCost: 5, UnitPrice: 8},
		},
	})
	if err != nil {
		t.Fatalf("alış başarısız: %v", err)
	}
	if !almostEqual(purchase.TotalCost, 50) {
		t.Errorf("TotalCost = %v, 50 bekleniyordu", purchase.TotalCost)
	}

	fresh := loadProduct(t, db, p.ID)
	if len(fresh.Batches) != 1 {
		t.Fatalf("1 parti bekleniyordu, %d var", len(fresh.Batches))
	}
	b := &fresh.Batches[0]
	if b.BatchNo != "B1" || !almostEqual(b.Qty, 10) || b.UnitCost != 5 || b.UnitPrice != 8 {
		t.Errorf("parti beklenen gibi değil: %+v", b)
	}
}

func TestApplyPurchasePieceEntry(t *testing.T) {
	// 10'luk şerit üründe 20 adet alış = 2 şerit stok; adet maliyeti 0.5 ise
	// şerit maliyeti 5 olarak yazılır.
	db := newTestDB(t)
	p := createProduct(t, db, &models.Product{Name: "Aspirin", PiecesPerStrip: 10})

	purchase, err := ApplyPurchase(db, PurchaseInput{
		Items: []PurchaseItemInput{
			{ProductID: p.ID, BatchNo: "B1", ExpiryDate: date(2027, 1, 1), Qty: 20, QtyUnit: models.UnitPiece, UnitCost: 0.5, UnitPrice: 1},
		},
	})
	if err != nil {
		t.Fatalf("alış başarısız: %v", err)
	}
	// toplam maliyet girilen birim üzerinden: 20 adet * 0.5
	if !almostEqual(purchase.TotalCost, 10) {
		t.Errorf("TotalCost = %v, 10 bekleniyordu", purchase.TotalCost)
	}

	fresh := loadProduct(t, db, p.ID)
	b := FindBatch(fresh, NewBatchKey("B1", date(2027, 1, 1)))
	if b == nil {
		t.Fatal("parti bulunamadı")
	}
	if !almostEqual(b.Qty, 2) {
		t.Errorf("parti miktarı %v şerit, 2 bekleniyordu", b.Qty)
	}
	if !almostEqual(b.UnitCost, 5) {
		t.Errorf("şerit maliyeti %v, 5 bekleniyordu", b.UnitCost)
	}

	// satır anlık görüntüsü: QtyBase stok biriminde, adet maliyeti korunmuş
	it := purchase.Items[0]
	if !almostEqual(it.QtyBase, 2) || !almostEqual(it.UnitCostPerPiece, 0.5) {
		t.Errorf("satır anlık görüntüsü hatalı: %+v", it)
	}
}

func TestApplyPurchasePoolRoutesToDefaultBatch(t *testing.T) {
	db := newTestDB(t)
	p := createProduct(t, db, &models.Product{Name: "Havuz Ürünü", SalePolicy: models.SalePolicyPool})

	// parti numarası verilse bile pool ürününde DEFAULT partiye gider
	_, err := ApplyPurchase(db, PurchaseInput{
		Items: []PurchaseItemInput{
			{ProductID: p.ID, BatchNo: "B1", ExpiryDate: date(2027, 1, 1), Qty: 5, UnitCost: 2, UnitPrice: 4},
		},
	})
	if err != nil {
		t.Fatalf("alış başarısız: %v", err)
	}

	fresh := loadProduct(t, db, p.ID)
	if len(fresh.Batches) != 1 || fresh.Batches[0].BatchNo != DefaultBatchNo {
		t.Fatalf("tek DEFAULT parti bekleniyordu: %+v", fresh.Batches)
	}
}

func TestApplyPurchaseValidatesAllLinesBeforeMutating(t *testing.T) {
	db := newTestDB(t)
	p := createProduct(t, db, &models.Product{Name: "Parol"})

	// ikinci satır geçersiz: ilk satır da uygulanmamalı
	_, err := ApplyPurchase(db, PurchaseInput{
		Items: []PurchaseItemInput{
			{ProductID: p.ID, BatchNo: "B1", ExpiryDate: date(2027, 1, 1), Qty: 10, UnitCost: 5, UnitPrice: 8},
			{ProductID: p.ID, BatchNo: "B2", ExpiryDate: date(2027, 6, 1), Qty: -3, UnitCost: 5, UnitPrice: 8},
		},
	})
	if !IsKind(err, KindInvalidQuantity) {
		t.Fatalf("InvalidQuantity bekleniyordu, %v geldi", err)
	}

	fresh := loadProduct(t, db, p.ID)
	if len(fresh.Batches) != 0 {
		t.Errorf("başarısız alış parti bırakmamalı: %+v", fresh.Batches)
	}
	var count int64
	db.Model(&models.Purchase{}).Count(&count)
	if count != 0 {
		t.Errorf("başarısız alış kayıt bırakmamalı: %d kayıt var", count)
	}
}

func TestApplyPurchaseUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	_, err := ApplyPurchase(db, PurchaseInput{
		Items: []PurchaseItemInput{
			{ProductID: 999, BatchNo: "B1", ExpiryDate: date(2027, 1, 1), Qty: 1, UnitCost: 1, UnitPrice: 1},
		},
	})
	if !IsKind(err, KindProductNotFound) {
		t.Errorf("ProductNotFound bekleniyordu, %v geldi", err)
	}
}

func TestApplyPurchaseRequiresBatchNoForFEFO(t *testing.T) {
	db := newTestDB(t)
	p := createProduct(t, db, &models.Product{Name: "Parol"})

	_, err := ApplyPurchase(db, PurchaseInput{
		Items: []PurchaseItemInput{
			{ProductID: p.ID, BatchNo: "  ", ExpiryDate: date(2027, 1, 1), Qty: 1, UnitCost: 1, UnitPrice: 1},
		},
	})
	if !IsKind(err, KindInvalidQuantity) {
		t.Errorf("parti numarasız fefo alışı reddedilmeliydi, %v geldi", err)
	}
}

func TestReversePurchaseRoundTrip(t *testing.T) {
	db := newTestDB(t)
	p := createProduct(t, db, &models.Product{Name: "Parol"})

	purchase, err := ApplyPurchase(db, PurchaseInput{
		Items: []PurchaseItemInput{
			{ProductID: p.ID, BatchNo: "B1", ExpiryDate: date(2027, 1, 1), Qty: 20, UnitCost: 5, UnitPrice: 8},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := batchQty(t, db, p.ID, "B1", date(2027, 1, 1)); !almostEqual(got, 20) {
		t.Fatalf("alış sonrası miktar %v, 20 bekleniyordu", got)
	}

	if err := ReversePurchase(db, purchase.ID); err != nil {
		t.Fatalf("geri alma başarısız: %v", err)
	}
	// miktar tam olarak alış öncesine döner
	if got := batchQty(t, db, p.ID, "B1", date(2027, 1, 1)); got != 0 {
		t.Errorf("geri alma sonrası miktar %v, 0 bekleniyordu", got)
	}

	// ikinci silme denemesi: kayıt artık yok
	if err := ReversePurchase(db, purchase.ID); !IsKind(err, KindNotFound) {
		t.Errorf("NotFound bekleniyordu, %v geldi", err)
	}
}

func TestReversePurchaseSurvivesConversionFactorChange(t *testing.T) {
	// Geri alma QtyBase üzerinden yapılır; katsayı sonradan değişse bile
	// düşülen miktar alıştaki stok miktarıyla birebir aynıdır.
	db := newTestDB(t)
	p := createProduct(t, db, &models.Product{Name: "Aspirin", PiecesPerStrip: 10})

	purchase, err := ApplyPurchase(db, PurchaseInput{
		Items: []PurchaseItemInput{
			{ProductID: p.ID, BatchNo: "B1", ExpiryDate: date(2027, 1, 1), Qty: 30, QtyUnit: models.UnitPiece, UnitCost: 1, UnitPrice: 2},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	// katsayı 10 -> 12 değişsin
	if err := db.Model(&models.Product{}).Where("id = ?", p.ID).Update("pieces_per_strip", 12).Error; err != nil {
		t.Fatal(err)
	}

	if err := ReversePurchase(db, purchase.ID); err != nil {
		t.Fatalf("geri alma başarısız: %v", err)
	}
	if got := batchQty(t, db, p.ID, "B1", date(2027, 1, 1)); got != 0 {
		t.Errorf("geri alma sonrası miktar %v, 0 bekleniyordu", got)
	}
}

func TestReversePurchaseBlockedByInterveningSale(t *testing.T) {
	db := newTestDB(t)
	p := createProduct(t, db, &models.Product{Name: "Parol"})

	purchase, err := ApplyPurchase(db, PurchaseInput{
		Items: []PurchaseItemInput{
			{ProductID: p.ID, BatchNo: "B1", ExpiryDate: date(2027, 1, 1), Qty: 10, UnitCost: 5, UnitPrice: 8},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	// araya giren satış partiden 8 tüketsin
	if _, err := ApplySale(db, SaleInput{
		Items: []SaleItemInput{{ProductID: p.ID, Qty: 8, UnitPrice: 8}},
	}); err != nil {
		t.Fatal(err)
	}
	if got := batchQty(t, db, p.ID, "B1", date(2027, 1, 1)); !almostEqual(got, 2) {
		t.Fatalf("satış sonrası miktar %v, 2 bekleniyordu", got)
	}

	// 10 düşülemez, işlem tamamen reddedilir
	if err := ReversePurchase(db, purchase.ID); !IsKind(err, KindWouldGoNegative) {
		t.Fatalf("WouldGoNegative bekleniyordu, %v geldi", err)
	}
	if got := batchQty(t, db, p.ID, "B1", date(2027, 1, 1)); !almostEqual(got, 2) {
		t.Errorf("başarısız geri alma miktarı değiştirdi: %v", got)
	}
	var count int64
	db.Model(&models.Purchase{}).Count(&count)
	if count != 1 {
		t.Errorf("başarısız geri alma kaydı silmemeli: %d kayıt var", count)
	}
}
