package catalog

import (
	"strings"

	"eczane-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CategoryResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func categoryToResponse(cat *models.Category) CategoryResponse {
	return CategoryResponse{ID: cat.ID, Name: cat.Name, Description: cat.Description}
}

// GET /api/categories
func ListCategoriesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var categories []models.Category
		if err := db.Order("name asc").Find(&categories).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategoriler listelenemedi")
		}

		res := make([]CategoryResponse, 0, len(categories))
		for i := range categories {
			res = append(res, categoryToResponse(&categories[i]))
		}
		return c.JSON(res)
	}
}

// POST /api/categories
func CreateCategoryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Kategori adı zorunlu")
		}

		var existing models.Category
		if err := db.Where("name = ?", body.Name).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Bu kategori adı zaten kullanılıyor")
		}

		cat := models.Category{Name: body.Name, Description: strings.TrimSpace(body.Description)}
		if err := db.Create(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategori oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(categoryToResponse(&cat))
	}
}

// GET /api/categories/:id
func GetCategoryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cat models.Category
		if err := db.First(&cat, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kategori bulunamadı")
		}
		return c.JSON(categoryToResponse(&cat))
	}
}

// PUT /api/categories/:id
func UpdateCategoryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cat models.Category
		if err := db.First(&cat, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kategori bulunamadı")
		}

		var body UpdateCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Kategori adı boş olamaz")
			}
			var existing models.Category
			if err := db.Where("name = ? AND id <> ?", name, cat.ID).First(&existing).Error; err == nil {
				return fiber.NewError(fiber.StatusBadRequest, "Bu kategori adı zaten kullanılıyor")
			}
			cat.Name = name
		}
		if body.Description != nil {
			cat.Description = strings.TrimSpace(*body.Description)
		}

		if err := db.Save(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategori güncellenemedi")
		}
		return c.JSON(categoryToResponse(&cat))
	}
}

// DELETE /api/categories/:id
func DeleteCategoryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cat models.Category
		if err := db.First(&cat, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kategori bulunamadı")
		}

		// Üstünde ürün varsa silinemez
		var count int64
		db.Model(&models.Product{}).Where("category_id = ?", cat.ID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "Bu kategoriye bağlı ürünler var, önce onları taşıyın")
		}

		if err := db.Delete(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategori silinemedi")
		}
		return c.JSON(fiber.Map{"message": "Kategori silindi"})
	}
}
