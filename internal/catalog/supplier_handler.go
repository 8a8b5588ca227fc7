package catalog

import (
	"strings"

	"eczane-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SupplierResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type SupplierRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func supplierToResponse(s *models.Supplier) SupplierResponse {
	return SupplierResponse{ID: s.ID, Name: s.Name, Phone: s.Phone, Email: s.Email, Address: s.Address}
}

// GET /api/suppliers
func ListSuppliersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var suppliers []models.Supplier
		if err := db.Order("name asc").Find(&suppliers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçiler listelenemedi")
		}

		res := make([]SupplierResponse, 0, len(suppliers))
		for i := range suppliers {
			res = append(res, supplierToResponse(&suppliers[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/suppliers
func CreateSupplierHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Tedarikçi adı zorunlu")
		}

		var existing models.Supplier
		if err := db.Where("name = ?", body.Name).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu tedarikçi adı zaten kullanılıyor")
		}

		s := models.Supplier{
			Name:    body.Name,
			Phone:   strings.TrimSpace(body.Phone),
			Email:   strings.TrimSpace(strings.ToLower(body.Email)),
			Address: strings.TrimSpace(body.Address),
		}
		if err := db.Create(&s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(supplierToResponse(&s))
	}
}

// GET /api/suppliers/:id
func GetSupplierHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var s models.Supplier
		if err := db.First(&s, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tedarikçi bulunamadı")
		}
		return c.JSON(supplierToResponse(&s))
	}
}

// PUT /api/suppliers/:id
func UpdateSupplierHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var s models.Supplier
		if err := db.First(&s, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tedarikçi bulunamadı")
		}

		var body SupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if name := strings.TrimSpace(body.Name); name != "" && name != s.Name {
			var existing models.Supplier
			if err := db.Where("name = ? AND id <> ?", name, s.ID).First(&existing).Error; err == nil {
				return fiber.NewError(fiber.StatusBadRequest, "Bu tedarikçi adı zaten kullanılıyor")
			}
			s.Name = name
		}
		s.Phone = strings.TrimSpace(body.Phone)
		s.Email = strings.TrimSpace(strings.ToLower(body.Email))
		s.Address = strings.TrimSpace(body.Address)

		if err := db.Save(&s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi güncellenemedi")
		}
		return c.JSON(supplierToResponse(&s))
	}
}

// DELETE /api/suppliers/:id
func DeleteSupplierHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var s models.Supplier
		if err := db.First(&s, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tedarikçi bulunamadı")
		}

		// Geçmiş alışları olan tedarikçi silinemez
		var count int64
		db.Model(&models.Purchase{}).Where("supplier_id = ?", s.ID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu tedarikçiye ait alış kayıtları var, silinemez")
		}

		if err := db.Delete(&s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikçi silinemedi")
		}
		return c.JSON(fiber.Map{"message": "Tedarikçi silindi"})
	}
}
