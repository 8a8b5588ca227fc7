package models

import "time"

// Ödeme yöntemleri (serbest metin, varsayılan "cash")
const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
)

// Sale - Stok çıkışı (satış) kaydı. Purchase gibi değiştirilemez; silme,
// stok hareketlerinin ters kaydıyla birlikte yapılır.
type Sale struct {
	ID            uint  `gorm:"primaryKey"`
	CustomerID    *uint `gorm:"index"`
	Customer      *Customer
	CustomerName  string     `gorm:"size:150"` // kayıtsız müşteri için serbest ad
	PaymentMethod string     `gorm:"size:20;not null;default:cash"`
	Items         []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	TotalRevenue  float64    `gorm:"not null"`
	TotalCost     float64    `gorm:"not null"`
	Profit        float64    `gorm:"not null"` // her zaman TotalRevenue - TotalCost
	Notes         string     `gorm:"size:500"`
	SoldAt        time.Time  `gorm:"index;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SaleItem - Satışın tek satırı. FEFO politikasında aynı ürün, dokunulan her
// parti için ayrı satır üretir. Qty stoktan fiilen düşülen miktardır (stok
// birimi cinsinden); pool politikasında faturalanan miktar PiecesSold'da
// tutulur ve stok yetersizse Qty'den büyük olabilir.
type SaleItem struct {
	ID         uint `gorm:"primaryKey"`
	SaleID     uint `gorm:"index;not null"`
	ProductID  uint `gorm:"index;not null"`
	Product    Product
	BatchNo    string    `gorm:"size:100"`
	ExpiryDate time.Time // pool politikasında sıfır değer olabilir
	Qty        float64   `gorm:"not null"` // stoktan düşülen miktar (stok birimi)
	QtyUnit    string    `gorm:"size:20;not null;default:piece"`
	QtyEntered float64   `gorm:"not null"` // kullanıcının girdiği miktar (QtyUnit cinsinden)
	UnitPrice  float64   `gorm:"not null"` // girilen birim başına satış fiyatı
	UnitCost   float64   `gorm:"not null"` // stok birimi başına maliyet (parti bazlı)
	// Adet bazlı anlık görüntüler; tutarlar bunlardan hesaplanır
	UnitPricePerPiece float64 `gorm:"not null"`
	UnitCostPerPiece  float64 `gorm:"not null"`
	PiecesSold        float64 `gorm:"not null"` // faturalanan adet
	LineRevenue       float64 `gorm:"not null"`
	LineCost          float64 `gorm:"not null"`
	LineProfit        float64 `gorm:"not null"` // LineRevenue - LineCost
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
