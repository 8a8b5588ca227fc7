package inventory

import (
	"strings"

	"eczane-backend/internal/audit"
	"eczane-backend/internal/ledger"
	"eczane-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BatchResponse struct {
	BatchNo    string  `json:"batch_no"`
	ExpiryDate string  `json:"expiry_date"`
	Qty        float64 `json:"qty"`
	UnitCost   float64 `json:"unit_cost"`
	UnitPrice  float64 `json:"unit_price"`
}

type ProductResponse struct {
	ID                   uint              `json:"id"`
	Name                 string            `json:"name"`
	GenericName          string            `json:"generic_name"`
	Brand                string            `json:"brand"`
	Unit                 string            `json:"unit"`
	PiecesPerStrip       float64           `json:"pieces_per_strip"`
	CategoryID           *uint             `json:"category_id"`
	DefaultSupplierID    *uint             `json:"default_supplier_id"`
	PurchasePriceDefault float64           `json:"purchase_price_default"`
	SalePriceDefault     float64           `json:"sale_price_default"`
	MinStock             float64           `json:"min_stock"`
	SalePolicy           models.SalePolicy `json:"sale_policy"`
	IsActive             bool              `json:"is_active"`
	TotalQty             float64           `json:"total_qty"` // stok birimi cinsinden eldeki toplam
	TotalPieces          float64           `json:"total_pieces"`
	Batches              []BatchResponse   `json:"batches,omitempty"`
}

type CreateProductRequest struct {
	Name                 string             `json:"name"`
	GenericName          string             `json:"generic_name"`
	Brand                string             `json:"brand"`
	Unit                 string             `json:"unit"`
	PiecesPerStrip       float64            `json:"pieces_per_strip"`
	CategoryID           *uint              `json:"category_id"`
	DefaultSupplierID    *uint              `json:"default_supplier_id"`
	PurchasePriceDefault float64            `json:"purchase_price_default"`
	SalePriceDefault     float64            `json:"sale_price_default"`
	MinStock             float64            `json:"min_stock"`
	SalePolicy           *models.SalePolicy `json:"sale_policy"`
}

type UpdateProductRequest struct {
	Name                 *string            `json:"name"`
	GenericName          *string            `json:"generic_name"`
	Brand                *string            `json:"brand"`
	PiecesPerStrip       *float64           `json:"pieces_per_strip"`
	CategoryID           *uint              `json:"category_id"`
	DefaultSupplierID    *uint              `json:"default_supplier_id"`
	PurchasePriceDefault *float64           `json:"purchase_price_default"`
	SalePriceDefault     *float64           `json:"sale_price_default"`
	MinStock             *float64           `json:"min_stock"`
	SalePolicy           *models.SalePolicy `json:"sale_policy"`
	IsActive             *bool              `json:"is_active"`
}

func productToResponse(p *models.Product, withBatches bool) ProductResponse {
	res := ProductResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		GenericName:          p.GenericName,
		Brand:                p.Brand,
		Unit:                 p.Unit,
		PiecesPerStrip:       p.PiecesPerStrip,
		CategoryID:           p.CategoryID,
		DefaultSupplierID:    p.DefaultSupplierID,
		PurchasePriceDefault: p.PurchasePriceDefault,
		SalePriceDefault:     p.SalePriceDefault,
		MinStock:             p.MinStock,
		SalePolicy:           p.SalePolicy,
		IsActive:             p.IsActive,
		TotalQty:             ledger.TotalQuantity(p),
		TotalPieces:          ledger.ToPieces(p, ledger.TotalQuantity(p)),
	}
	if withBatches {
		res.Batches = make([]BatchResponse, 0, len(p.Batches))
		for i := range p.Batches {
			b := &p.Batches[i]
			res.Batches = append(res.Batches, BatchResponse{
				BatchNo:    b.BatchNo,
				ExpiryDate: b.ExpiryDate.Format("2006-01-02"),
				Qty:        b.Qty,
				UnitCost:   b.UnitCost,
				UnitPrice:  b.UnitPrice,
			})
		}
	}
	return res
}

// GET /api/products?q=aspirin&include_inactive=true
func ListProductsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.Product{}).Preload("Batches")

		if c.Query("include_inactive") != "true" {
			dbq = dbq.Where("is_active = ?", true)
		}
		if q := strings.TrimSpace(c.Query("q")); q != "" {
			like := "%" + q + "%"
			dbq = dbq.Where("name ILIKE ? OR generic_name ILIKE ? OR brand ILIKE ?", like, like, like)
		}

		var products []models.Product
		if err := dbq.Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		res := make([]ProductResponse, 0, len(products))
		for i := range products {
			res = append(res, productToResponse(&products[i], false))
		}
		return c.JSON(res)
	}
}

// GET /api/products/:id (partilerle birlikte)
func GetProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Product
		if err := db.Preload("Batches").First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}
		return c.JSON(productToResponse(&p, true))
	}
}

// POST /api/products
func CreateProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün adı zorunlu")
		}

		var existing models.Product
		if err := db.Where("name = ?", body.Name).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu ürün adı zaten kullanılıyor")
		}

		unit := strings.TrimSpace(body.Unit)
		if unit == "" {
			unit = models.UnitStrip
		}
		pps := body.PiecesPerStrip
		if pps < 1 {
			pps = 1
		}
		policy := models.SalePolicyFEFO
		if body.SalePolicy != nil {
			if *body.SalePolicy != models.SalePolicyFEFO && *body.SalePolicy != models.SalePolicyPool {
				return fiber.NewError(fiber.StatusBadRequest, "Satış politikası 'fefo' veya 'pool' olmalı")
			}
			policy = *body.SalePolicy
		}

		p := models.Product{
			Name:                 body.Name,
			GenericName:          strings.TrimSpace(body.GenericName),
			Brand:                strings.TrimSpace(body.Brand),
			Unit:                 unit,
			PiecesPerStrip:       pps,
			CategoryID:           body.CategoryID,
			DefaultSupplierID:    body.DefaultSupplierID,
			PurchasePriceDefault: body.PurchasePriceDefault,
			SalePriceDefault:     body.SalePriceDefault,
			MinStock:             body.MinStock,
			SalePolicy:           policy,
			IsActive:             true,
		}

		if err := db.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün oluşturulamadı")
		}

		writeProductAudit(db, c, &p, models.AuditActionCreate, nil)

		return c.Status(fiber.StatusCreated).JSON(productToResponse(&p, false))
	}
}

// PUT /api/products/:id
func UpdateProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Product
		if err := db.Preload("Batches").First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}
		before := p

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Ürün adı boş olamaz")
			}
			var existing models.Product
			if err := db.Where("name = ? AND id <> ?", name, p.ID).First(&existing).Error; err == nil {
				return fiber.NewError(fiber.StatusBadRequest, "Bu ürün adı zaten kullanılıyor")
			}
			p.Name = name
		}
		if body.GenericName != nil {
			p.GenericName = strings.TrimSpace(*body.GenericName)
		}
		if body.Brand != nil {
			p.Brand = strings.TrimSpace(*body.Brand)
		}
		if body.PiecesPerStrip != nil {
			if *body.PiecesPerStrip < 1 {
				return fiber.NewError(fiber.StatusBadRequest, "Dönüşüm katsayısı 1'den küçük olamaz")
			}
			p.PiecesPerStrip = *body.PiecesPerStrip
		}
		if body.CategoryID != nil {
			p.CategoryID = body.CategoryID
		}
		if body.DefaultSupplierID != nil {
			p.DefaultSupplierID = body.DefaultSupplierID
		}
		if body.PurchasePriceDefault != nil {
			p.PurchasePriceDefault = *body.PurchasePriceDefault
		}
		if body.SalePriceDefault != nil {
			p.SalePriceDefault = *body.SalePriceDefault
		}
		if body.MinStock != nil {
			p.MinStock = *body.MinStock
		}
		if body.SalePolicy != nil {
			if *body.SalePolicy != models.SalePolicyFEFO && *body.SalePolicy != models.SalePolicyPool {
				return fiber.NewError(fiber.StatusBadRequest, "Satış politikası 'fefo' veya 'pool' olmalı")
			}
			p.SalePolicy = *body.SalePolicy
		}
		if body.IsActive != nil {
			p.IsActive = *body.IsActive
		}

		if err := db.Omit("Batches").Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		writeProductAudit(db, c, &p, models.AuditActionUpdate, &before)

		return c.JSON(productToResponse(&p, false))
	}
}

// DELETE /api/products/:id
// Geçmiş işlemi olan ürün hiç silinmez, pasife çekilir; aksi halde alış/satış
// kayıtlarının ters kaydı imkansızlaşır.
func DeleteProductHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Product
		if err := db.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var purchaseCount, saleCount int64
		db.Model(&models.PurchaseItem{}).Where("product_id = ?", p.ID).Count(&purchaseCount)
		db.Model(&models.SaleItem{}).Where("product_id = ?", p.ID).Count(&saleCount)

		if purchaseCount > 0 || saleCount > 0 {
			if err := db.Model(&p).Update("is_active", false).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Ürün pasife çekilemedi")
			}
			writeProductAudit(db, c, &p, models.AuditActionUpdate, nil)
			return c.JSON(fiber.Map{"message": "Ürünün işlem geçmişi var, pasife çekildi"})
		}

		if err := db.Select("Batches").Delete(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün silinemedi")
		}
		writeProductAudit(db, c, &p, models.AuditActionDelete, nil)
		return c.JSON(fiber.Map{"message": "Ürün silindi"})
	}
}

func writeProductAudit(db *gorm.DB, c *fiber.Ctx, p *models.Product, action models.AuditAction, before *models.Product) {
	userID, userName, err := currentUser(db, c)
	if err != nil {
		return
	}
	var beforeVal any
	if before != nil {
		beforeVal = before
	}
	_ = audit.WriteLog(db, audit.LogOptions{
		UserID:      userID,
		UserName:    userName,
		EntityType:  "product",
		EntityID:    p.ID,
		Action:      action,
		Description: "Ürün: " + p.Name,
		Before:      beforeVal,
		After:       p,
	})
}
