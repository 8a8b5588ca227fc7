package ledger

import (
	"math"

	"eczane-backend/internal/models"
)

// Birim dönüşümü: ürünün stok takip birimi (strip) ile alt birim (piece)
// arasında. Dönüşüm katsayısı ürünün PiecesPerStrip alanıdır; 1 ise alt
// birim yoktur, miktarlar olduğu gibi geçer. Kesirli stok miktarları
// geçerlidir, hiçbir yönde tam sayıya yuvarlama yapılmaz.

// piecesPerStrip: katsayıyı 1'in altına düşmeyecek şekilde okur
// (eski kayıtlarda 0 kalmış olabilir).
func piecesPerStrip(p *models.Product) float64 {
	if p.PiecesPerStrip < 1 {
		return 1
	}
	return p.PiecesPerStrip
}

// isStripProduct: stok şerit cinsinden tutuluyor ve gerçekten alt birime
// bölünüyor mu?
func isStripProduct(p *models.Product) bool {
	return p.Unit == models.UnitStrip && piecesPerStrip(p) > 1
}

// ToStockUnits: girilen miktarı stok birimine çevirir.
// Adet girilen şerit ürünlerde qty/katsayı, aksi halde qty değişmeden döner.
func ToStockUnits(p *models.Product, qty float64, enteredUnit string) float64 {
	if isStripProduct(p) && enteredUnit == models.UnitPiece {
		return qty / piecesPerStrip(p)
	}
	return qty
}

// ToEnteredUnit: ToStockUnits'in cebirsel tersi. Gidiş-dönüş, kayan nokta
// toleransı içinde aynı değeri verir.
func ToEnteredUnit(p *models.Product, stockQty float64, enteredUnit string) float64 {
	if isStripProduct(p) && enteredUnit == models.UnitPiece {
		return stockQty * piecesPerStrip(p)
	}
	return stockQty
}

// PerPiece: girilen birim başına fiyatı/maliyeti adet başına değere çevirir.
func PerPiece(p *models.Product, value float64, enteredUnit string) float64 {
	if isStripProduct(p) && enteredUnit != models.UnitPiece {
		return value / piecesPerStrip(p)
	}
	return value
}

// PerStockUnit: girilen birim başına değeri stok birimi başına değere çevirir.
func PerStockUnit(p *models.Product, value float64, enteredUnit string) float64 {
	if isStripProduct(p) && enteredUnit == models.UnitPiece {
		return value * piecesPerStrip(p)
	}
	return value
}

// ToPieces: stok birimi cinsinden miktarı adede çevirir (raporlama ve
// tutar hesapları adet bazında yapılır).
func ToPieces(p *models.Product, stockQty float64) float64 {
	if isStripProduct(p) {
		return stockQty * piecesPerStrip(p)
	}
	return stockQty
}

// validQty: miktar/fiyat alanları için sonluluk kontrolü.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
