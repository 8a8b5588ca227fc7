package catalog

import (
	"strings"

	"eczane-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CustomerResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Note    string `json:"note"`
}

type CustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Note    string `json:"note"`
}

func customerToResponse(m *models.Customer) CustomerResponse {
	return CustomerResponse{ID: m.ID, Name: m.Name, Phone: m.Phone, Email: m.Email, Address: m.Address, Note: m.Note}
}

// GET /api/customers?q=ad veya telefon
func ListCustomersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.Customer{})

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			like := "%" + q + "%"
			dbq = dbq.Where("name ILIKE ? OR phone LIKE ?", like, like)
		}

		var customers []models.Customer
		if err := dbq.Order("name asc").Find(&customers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteriler listelenemedi")
		}

		res := make([]CustomerResponse, 0, len(customers))
		for i := range customers {
			res = append(res, customerToResponse(&customers[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/customers
func CreateCustomerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Müşteri adı zorunlu")
		}

		m := models.Customer{
			Name:    body.Name,
			Phone:   strings.TrimSpace(body.Phone),
			Email:   strings.TrimSpace(strings.ToLower(body.Email)),
			Address: strings.TrimSpace(body.Address),
			Note:    strings.TrimSpace(body.Note),
		}
		if err := db.Create(&m).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteri oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(customerToResponse(&m))
	}
}

// GET /api/customers/:id
func GetCustomerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var m models.Customer
		if err := db.First(&m, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Müşteri bulunamadı")
		}
		return c.JSON(customerToResponse(&m))
	}
}

// PUT /api/customers/:id
func UpdateCustomerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var m models.Customer
		if err := db.First(&m, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Müşteri bulunamadı")
		}

		var body CustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if name := strings.TrimSpace(body.Name); name != "" {
			m.Name = name
		}
		m.Phone = strings.TrimSpace(body.Phone)
		m.Email = strings.TrimSpace(strings.ToLower(body.Email))
		m.Address = strings.TrimSpace(body.Address)
		m.Note = strings.TrimSpace(body.Note)

		if err := db.Save(&m).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteri güncellenemedi")
		}
		return c.JSON(customerToResponse(&m))
	}
}

// DELETE /api/customers/:id
func DeleteCustomerHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var m models.Customer
		if err := db.First(&m, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Müşteri bulunamadı")
		}

		// Satış geçmişi olan müşteri silinmez, satışlarda adı kalır
		var count int64
		db.Model(&models.Sale{}).Where("customer_id = ?", m.ID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu müşteriye ait satış kayıtları var, silinemez")
		}

		if err := db.Delete(&m).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteri silinemedi")
		}
		return c.JSON(fiber.Map{"message": "Müşteri silindi"})
	}
}
