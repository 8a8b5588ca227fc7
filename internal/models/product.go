package models

import "time"

// Satış tüketim politikası. "fefo": parti bazlı, önce son kullanma tarihi
// yaklaşan parti tüketilir. "pool": tüm stok tek DEFAULT partide tutulur,
// satış stok yetmese de tam miktar üzerinden faturalanır.
type SalePolicy string

const (
	SalePolicyFEFO SalePolicy = "fefo"
	SalePolicyPool SalePolicy = "pool"
)

// Birim sabitleri. Stok takip birimi "strip", alt birim "piece".
const (
	UnitStrip = "strip"
	UnitPiece = "piece"
)

type Product struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:150;not null;unique"`
	GenericName string `gorm:"size:150"` // etken madde adı
	Brand       string `gorm:"size:100"`
	Unit        string `gorm:"size:20;not null;default:strip"` // stok takip birimi
	// Unit "strip" ise 1 şeritte kaç adet (piece) olduğu. Stok şerit cinsinden
	// tutulur, adet bazlı alış/satış bu katsayı ile çevrilir. Her zaman >= 1.
	PiecesPerStrip       float64 `gorm:"not null;default:1"`
	CategoryID           *uint   `gorm:"index"`
	Category             *Category
	DefaultSupplierID    *uint `gorm:"index"`
	DefaultSupplier      *Supplier
	PurchasePriceDefault float64        `gorm:"not null;default:0"` // yeni alışlarda ön dolu gelen maliyet
	SalePriceDefault     float64        `gorm:"not null;default:0"`
	MinStock             float64        `gorm:"not null;default:0"` // kritik stok eşiği
	SalePolicy           SalePolicy     `gorm:"size:10;not null;default:fefo"`
	IsActive             bool           `gorm:"not null;default:true"`
	Batches              []ProductBatch `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ProductBatch: bir ürünün tek bir stok partisi.
// Kimlik = küçük harfe çevrilmiş BatchNo + güne yuvarlanmış ExpiryDate
// (bkz. ledger.BatchKey). Qty hiçbir işlemden sonra negatif olamaz.
type ProductBatch struct {
	ID         uint      `gorm:"primaryKey"`
	ProductID  uint      `gorm:"index;not null"`
	BatchNo    string    `gorm:"size:100;not null"`
	ExpiryDate time.Time `gorm:"not null"`
	Qty        float64   `gorm:"not null"` // stok birimi cinsinden, kesirli olabilir
	UnitCost   float64   `gorm:"not null"` // stok birimi başına maliyet
	UnitPrice  float64   `gorm:"not null"` // stok birimi başına satış fiyatı (bilgi amaçlı)
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
