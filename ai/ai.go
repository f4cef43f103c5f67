// Package ai provides the generative text capability used for product
// descriptions, password strength, recommendations, log summaries and
// portfolio risk summaries.
package ai

import (
	"context"
	"errors"

	"gripinvest/models"
)

// ErrUnavailable is returned when no model backend is configured.
var ErrUnavailable = errors.New("ai: service unavailable")

// Assistant is the AI collaborator. Every method may fail; callers degrade to
// a placeholder or a local fallback and never fail the request because of it.
type Assistant interface {
	DescribeProduct(ctx context.Context, p ProductDetails) (string, error)
	ScorePassword(ctx context.Context, password string) (string, error)
	Recommend(ctx context.Context, riskAppetite models.RiskLevel, products []models.Product, investments []models.Investment) ([]Recommendation, error)
	SummarizeError(ctx context.Context, message string) (string, error)
	SummarizeRisk(ctx context.Context, p PortfolioSnapshot) (string, error)
}

type ProductDetails struct {
	Name           string
	InvestmentType models.InvestmentType
	TenureMonths   int
	AnnualYield    models.Percent
	RiskLevel      models.RiskLevel
}

type Recommendation struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Reason      string `json:"reason"`
	AnnualYield string `json:"annualYield"`
}

// PortfolioSnapshot is the aggregate a risk summary is computed from.
// Investments are expected to carry their product.
type PortfolioSnapshot struct {
	TotalInvested       models.Money
	TotalExpectedReturn models.Money
	NumberOfInvestments int
	Investments         []models.Investment
}

// Unavailable is the Assistant used when no API key is configured.
type Unavailable struct{}

func (Unavailable) DescribeProduct(context.Context, ProductDetails) (string, error) {
	return "", ErrUnavailable
}

func (Unavailable) ScorePassword(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

func (Unavailable) Recommend(context.Context, models.RiskLevel, []models.Product, []models.Investment) ([]Recommendation, error) {
	return nil, ErrUnavailable
}

func (Unavailable) SummarizeError(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

func (Unavailable) SummarizeRisk(context.Context, PortfolioSnapshot) (string, error) {
	return "", ErrUnavailable
}
