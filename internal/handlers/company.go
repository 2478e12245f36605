package handlers

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/tribuna/internal/apperr"
	"github.com/example/tribuna/internal/config"
	"github.com/example/tribuna/internal/models"
	"github.com/example/tribuna/internal/services"
	"github.com/example/tribuna/internal/utils"
)

// CompanyHandler manages companies, their discounts, employee links and the
// fan discount pool.
type CompanyHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	images *services.ImageService
}

// NewCompanyHandler constructs CompanyHandler.
func NewCompanyHandler(db *gorm.DB, cfg *config.Config, images *services.ImageService) *CompanyHandler {
	return &CompanyHandler{db: db, cfg: cfg, images: images}
}

// ListCompanies returns paginated companies.
func (h *CompanyHandler) ListCompanies(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	var companies []models.Company
	var total int64

	if err := h.db.Model(&models.Company{}).Count(&total).Error; err != nil {
		return err
	}

	if err := h.db.Limit(pg.Limit).Offset(pg.Offset).Order("created_at desc").
		Find(&companies).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    companies,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetCompany returns a single company with its discounts.
func (h *CompanyHandler) GetCompany(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.ValidationFailed("invalid id")
	}

	var company models.Company
	if err := h.db.Preload("Discounts").First(&company, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("company not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": company})
}

type companyRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Address     string `json:"address"`
}

// CreateCompany persists a new company.
func (h *CompanyHandler) CreateCompany(c *fiber.Ctx) error {
	var req companyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	company := models.Company{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
	}
	if err := h.db.Create(&company).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": company})
}

// UpdateCompany updates an existing company.
func (h *CompanyHandler) UpdateCompany(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.ValidationFailed("invalid id")
	}

	var company models.Company
	if err := h.db.First(&company, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("company not found")
		}
		return err
	}

	var req companyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	company.Name = req.Name
	company.Description = req.Description
	company.Address = req.Address
	if err := h.db.Save(&company).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": company})
}

// DeleteCompany removes a company by ID.
func (h *CompanyHandler) DeleteCompany(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.ValidationFailed("invalid id")
	}

	if err := h.db.Delete(&models.Company{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// UploadLogo stores a company logo and resizes it proportionally when it
// exceeds the configured bound.
func (h *CompanyHandler) UploadLogo(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.ValidationFailed("invalid id")
	}

	var company models.Company
	if err := h.db.First(&company, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("company not found")
		}
		return err
	}

	file, err := c.FormFile("logo")
	if err != nil {
		return apperr.ValidationFailed("logo file is required")
	}

	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(h.cfg.UploadDir, uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveFile(file, path); err != nil {
		return err
	}

	if err := h.images.ResizeProportionally(path); err != nil {
		os.Remove(path)
		return apperr.ValidationFailed("uploaded file is not a valid image")
	}

	company.LogoPath = path
	if err := h.db.Save(&company).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": company})
}

type discountRequest struct {
	Percent     int    `json:"percent" validate:"min=0,max=100"`
	Amount      int    `json:"amount" validate:"min=0"`
	Description string `json:"description"`
}

// CreateDiscount adds a discount entry to a company.
func (h *CompanyHandler) CreateDiscount(c *fiber.Ctx) error {
	companyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.ValidationFailed("invalid id")
	}

	var company models.Company
	if err := h.db.First(&company, "id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("company not found")
		}
		return err
	}

	var req discountRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	discount := models.CompanyDiscount{
		UUID:        uuid.New(),
		CompanyID:   company.ID,
		Percent:     req.Percent,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if err := h.db.Create(&discount).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": discount})
}

// UpdateDiscount changes a discount entry.
func (h *CompanyHandler) UpdateDiscount(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.ValidationFailed("invalid id")
	}

	var discount models.CompanyDiscount
	if err := h.db.First(&discount, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("discount not found")
		}
		return err
	}

	var req discountRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	discount.Percent = req.Percent
	discount.Amount = req.Amount
	discount.Description = req.Description
	if err := h.db.Save(&discount).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": discount})
}

// DeleteDiscount removes a discount entry.
func (h *CompanyHandler) DeleteDiscount(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.ValidationFailed("invalid id")
	}

	if err := h.db.Delete(&models.CompanyDiscount{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type employeeLinkRequest struct {
	UserID      uuid.UUID   `json:"user_id" validate:"required"`
	Position    string      `json:"position"`
	IsEmployer  bool        `json:"is_employer"`
	DiscountIDs []uuid.UUID `json:"discount_ids"`
}

// LinkEmployee links a user to a company as an employee and attaches the
// selected discounts. The user's role switches to employee.
func (h *CompanyHandler) LinkEmployee(c *fiber.Ctx) error {
	companyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.ValidationFailed("invalid id")
	}

	var req employeeLinkRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("user not found")
		}
		return err
	}

	var discounts []models.CompanyDiscount
	if len(req.DiscountIDs) > 0 {
		if err := h.db.Find(&discounts, "id IN ?", req.DiscountIDs).Error; err != nil {
			return err
		}
	}

	link := models.UserCompany{
		UserID:     user.ID,
		CompanyID:  &companyID,
		IsEmployer: req.IsEmployer,
		Position:   req.Position,
		Discounts:  discounts,
	}
	if err := h.db.Create(&link).Error; err != nil {
		return err
	}

	if err := h.db.Model(&user).Update("status", models.StatusEmployee).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": link})
}

// UnlinkEmployee removes an employee link.
func (h *CompanyHandler) UnlinkEmployee(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.ValidationFailed("invalid id")
	}

	if err := h.db.Delete(&models.UserCompany{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type fanPoolRequest struct {
	Description string      `json:"description"`
	DiscountIDs []uuid.UUID `json:"discount_ids" validate:"required,min=1"`
}

// ListFanDiscounts returns the fan discount pools.
func (h *CompanyHandler) ListFanDiscounts(c *fiber.Ctx) error {
	var pools []models.FanDiscount
	if err := h.db.Preload("Discounts").Find(&pools).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": pools})
}

// CreateFanDiscount creates a fan discount pool from existing company
// discounts.
func (h *CompanyHandler) CreateFanDiscount(c *fiber.Ctx) error {
	var req fanPoolRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var discounts []models.CompanyDiscount
	if err := h.db.Find(&discounts, "id IN ?", req.DiscountIDs).Error; err != nil {
		return err
	}
	if len(discounts) == 0 {
		return apperr.ValidationFailed("no matching discounts")
	}

	pool := models.FanDiscount{
		Description: req.Description,
		Discounts:   discounts,
	}
	if err := h.db.Create(&pool).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": pool})
}

// DeleteFanDiscount removes a fan discount pool.
func (h *CompanyHandler) DeleteFanDiscount(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.ValidationFailed("invalid id")
	}

	if err := h.db.Delete(&models.FanDiscount{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
