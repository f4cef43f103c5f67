package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gripinvest/ai"
	"gripinvest/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var defaultMinInvestment = models.MoneyFromInt(1000)

// ProductCatalog reads investment products and carries the administrative
// writes.
type ProductCatalog struct {
	DB  *gorm.DB
	AI  ai.Assistant
	Log *slog.Logger
}

func NewProductCatalog(db *gorm.DB, assistant ai.Assistant, log *slog.Logger) *ProductCatalog {
	if assistant == nil {
		assistant = ai.Unavailable{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &ProductCatalog{DB: db, AI: assistant, Log: log}
}

func (c *ProductCatalog) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return getProduct(c.DB.WithContext(ctx), id)
}

func getProduct(db *gorm.DB, id string) (*models.Product, error) {
	var p models.Product
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListAll returns every product ordered by name.
func (c *ProductCatalog) ListAll(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	if err := c.DB.WithContext(ctx).Order("name ASC, id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ProductInput is the administrative payload. Nil fields are left unchanged
// on update.
type ProductInput struct {
	Name           *string                `json:"name"`
	InvestmentType *models.InvestmentType `json:"investmentType"`
	TenureMonths   *int                   `json:"tenureMonths"`
	AnnualYield    *models.Percent        `json:"annualYield"`
	RiskLevel      *models.RiskLevel      `json:"riskLevel"`
	MinInvestment  *models.Money          `json:"minInvestment"`
	MaxInvestment  *models.Money          `json:"maxInvestment"`
	Description    *string                `json:"description"`
}

func (in ProductInput) touchesDescribedFields() bool {
	return in.Name != nil || in.InvestmentType != nil || in.TenureMonths != nil ||
		in.AnnualYield != nil || in.RiskLevel != nil
}

func (in ProductInput) apply(p *models.Product) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.InvestmentType != nil {
		p.InvestmentType = *in.InvestmentType
	}
	if in.TenureMonths != nil {
		p.TenureMonths = *in.TenureMonths
	}
	if in.AnnualYield != nil {
		p.AnnualYield = in.AnnualYield.Round2()
	}
	if in.RiskLevel != nil {
		p.RiskLevel = *in.RiskLevel
	}
	if in.MinInvestment != nil {
		p.MinInvestment = in.MinInvestment.Round2()
	}
	if in.MaxInvestment != nil {
		m := in.MaxInvestment.Round2()
		p.MaxInvestment = &m
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
}

func validateProduct(p *models.Product) error {
	switch {
	case p.Name == "":
		return invalid(ErrInvalidProduct, "Product name is required.")
	case !p.InvestmentType.Valid():
		return invalid(ErrInvalidProduct, "Invalid investment type %q.", p.InvestmentType)
	case p.TenureMonths <= 0:
		return invalid(ErrInvalidProduct, "Tenure must be a positive number of months.")
	case p.AnnualYield.IsNegative():
		return invalid(ErrInvalidProduct, "Annual yield cannot be negative.")
	case !p.RiskLevel.Valid():
		return invalid(ErrInvalidProduct, "Invalid risk level %q.", p.RiskLevel)
	case p.MinInvestment.IsNegative():
		return invalid(ErrInvalidProduct, "Minimum investment cannot be negative.")
	case p.MaxInvestment != nil && p.MaxInvestment.LessThan(p.MinInvestment.Decimal):
		return invalid(ErrInvalidProduct, "Maximum investment must be at least the minimum investment.")
	}
	return nil
}

func (c *ProductCatalog) describe(ctx context.Context, p *models.Product) {
	desc, err := c.AI.DescribeProduct(ctx, ai.ProductDetails{
		Name:           p.Name,
		InvestmentType: p.InvestmentType,
		TenureMonths:   p.TenureMonths,
		AnnualYield:    p.AnnualYield,
		RiskLevel:      p.RiskLevel,
	})
	if err != nil {
		c.Log.Warn("product description generation failed", slog.String("product", p.Name), slog.String("error", err.Error()))
		return
	}
	p.Description = desc
}

func (c *ProductCatalog) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	p := &models.Product{
		ID:            uuid.NewString(),
		MinInvestment: defaultMinInvestment,
	}
	in.apply(p)
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if p.Description == "" {
		c.describe(ctx, p)
	}
	if err := c.DB.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (c *ProductCatalog) Update(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	p, err := c.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(p)
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if in.Description == nil && in.touchesDescribedFields() {
		c.describe(ctx, p)
	}
	if err := c.DB.WithContext(ctx).Save(p).Error; err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}
	return p, nil
}

// Delete removes a product that no investment references.
func (c *ProductCatalog) Delete(ctx context.Context, id string) error {
	return c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getProduct(tx, id); err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.Investment{}).Where("product_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrProductInUse
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	})
}
