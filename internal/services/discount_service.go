package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/tribuna/internal/apperr"
	"github.com/example/tribuna/internal/models"
)

// DiscountEntry is a single non-zero discount shown on the lookup page.
type DiscountEntry struct {
	Percent     int    `json:"percent"`
	Amount      int    `json:"amount"`
	Description string `json:"description"`
}

// CompanyDiscounts groups the entries of one company.
type CompanyDiscounts struct {
	Company   string          `json:"company"`
	Discounts []DiscountEntry `json:"discounts"`
}

// DiscountSummary is the result of a lookup by QR code.
type DiscountSummary struct {
	Code            string             `json:"code"`
	User            *models.User       `json:"user"`
	CompanyName     string             `json:"company_name"`
	CompanyPosition string             `json:"company_position"`
	Companies       []CompanyDiscounts `json:"company_discounts"`
}

// discountResolver is one resolution strategy per user role.
type discountResolver interface {
	resolve(db *gorm.DB, user *models.User, summary *DiscountSummary) error
}

// DiscountService resolves which discounts apply to the holder of a QR code.
type DiscountService struct {
	db *gorm.DB
}

// NewDiscountService constructs a DiscountService.
func NewDiscountService(db *gorm.DB) *DiscountService {
	return &DiscountService{db: db}
}

// Lookup resolves the owning user of the code and gathers their discounts
// with the strategy matching the user's role.
func (s *DiscountService) Lookup(code uuid.UUID) (*DiscountSummary, error) {
	var qr models.UserQRCode
	if err := s.db.Preload("User").First(&qr, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("unknown code")
		}
		return nil, err
	}

	summary := &DiscountSummary{
		Code: code.String(),
		User: qr.User,
	}
	if err := resolverFor(qr.User.Status).resolve(s.db, qr.User, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

func resolverFor(status string) discountResolver {
	if status == models.StatusEmployee {
		return employeeResolver{}
	}
	return fanResolver{}
}

// employeeResolver gathers discounts from every company the user is linked
// to and surfaces the single employer-side link for display.
type employeeResolver struct{}

func (employeeResolver) resolve(db *gorm.DB, user *models.User, summary *DiscountSummary) error {
	var links []models.UserCompany
	if err := db.Preload("Company").Preload("Discounts.Company").
		Find(&links, "user_id = ?", user.ID).Error; err != nil {
		return err
	}

	grouped := newGrouping()
	for _, link := range links {
		for _, discount := range link.Discounts {
			grouped.add(&discount)
		}
		if link.IsEmployer && link.Company != nil {
			summary.CompanyName = link.Company.Name
			summary.CompanyPosition = link.Position
		}
	}
	summary.Companies = grouped.companies
	return nil
}

// fanResolver gathers discounts from the global fan pool.
type fanResolver struct{}

func (fanResolver) resolve(db *gorm.DB, user *models.User, summary *DiscountSummary) error {
	var pools []models.FanDiscount
	if err := db.Preload("Discounts.Company").Find(&pools).Error; err != nil {
		return err
	}

	grouped := newGrouping()
	for _, pool := range pools {
		for _, discount := range pool.Discounts {
			grouped.add(&discount)
		}
	}
	summary.Companies = grouped.companies
	return nil
}

// grouping collects non-zero discounts per company, keeping the order in
// which companies first appear.
type grouping struct {
	index     map[string]int
	companies []CompanyDiscounts
}

func newGrouping() *grouping {
	return &grouping{index: make(map[string]int)}
}

func (g *grouping) add(discount *models.CompanyDiscount) {
	if discount.Zero() || discount.Company == nil {
		return
	}

	entry := DiscountEntry{
		Percent:     discount.Percent,
		Amount:      discount.Amount,
		Description: discount.Description,
	}

	name := discount.Company.Name
	if i, ok := g.index[name]; ok {
		g.companies[i].Discounts = append(g.companies[i].Discounts, entry)
		return
	}
	g.index[name] = len(g.companies)
	g.companies = append(g.companies, CompanyDiscounts{
		Company:   name,
		Discounts: []DiscountEntry{entry},
	})
}
