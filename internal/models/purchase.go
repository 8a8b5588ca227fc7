package models

import "time"

// Purchase - Stok girişi (alış) kaydı. Oluşturulduktan sonra değiştirilmez;
// düzeltme gerekiyorsa silinir (ters kayıt) ve yeniden girilir.
type Purchase struct {
	ID          uint  `gorm:"primaryKey"`
	SupplierID  *uint `gorm:"index"`
	Supplier    *Supplier
	InvoiceNo   string         `gorm:"size:100"`
	Items       []PurchaseItem `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	TotalCost   float64        `gorm:"not null"` // Σ qty × unitCost (girilen birim üzerinden)
	Notes       string         `gorm:"size:500"`
	PurchasedAt time.Time      `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PurchaseItem - Alışın tek satırı. Alış anındaki dönüşüm katsayısı ve birim
// fiyatlar anlık görüntü olarak saklanır; ürün ayarları sonradan değişse bile
// ters kayıt QtyBase üzerinden birebir geri alınabilir.
type PurchaseItem struct {
	ID         uint `gorm:"primaryKey"`
	PurchaseID uint `gorm:"index;not null"`
	ProductID  uint `gorm:"index;not null"`
	Product    Product
	BatchNo    string    `gorm:"size:100;not null"`
	ExpiryDate time.Time `gorm:"not null"`
	Qty        float64   `gorm:"not null"`                        // girilen miktar (QtyUnit cinsinden)
	QtyUnit    string    `gorm:"size:20;not null;default:strip"`  // strip | piece
	QtyBase    float64   `gorm:"not null"`                        // stok birimi cinsinden; iadede esas alınan değer
	UnitCost   float64   `gorm:"not null"`                        // girilen birim başına
	UnitPrice  float64   `gorm:"not null"`
	// Alış anındaki katsayı ve adet bazlı fiyatlar
	PiecesPerStrip    float64 `gorm:"not null;default:1"`
	UnitCostPerPiece  float64 `gorm:"not null"`
	UnitPricePerPiece float64 `gorm:"not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
