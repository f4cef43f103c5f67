package services

import (
	"context"
	"log/slog"

	"gripinvest/ai"
	"gripinvest/models"

	"gorm.io/gorm"
)

// RiskSummaryUnavailable replaces the AI risk summary when generation fails.
const RiskSummaryUnavailable = "AI-powered risk summary is currently unavailable."

type Portfolio struct {
	TotalInvested       models.Money        `json:"totalInvested"`
	TotalExpectedReturn models.Money        `json:"totalExpectedReturn"`
	NumberOfInvestments int                 `json:"numberOfInvestments"`
	Investments         []models.Investment `json:"investments"`
}

func (p *Portfolio) snapshot() ai.PortfolioSnapshot {
	return ai.PortfolioSnapshot{
		TotalInvested:       p.TotalInvested,
		TotalExpectedReturn: p.TotalExpectedReturn,
		NumberOfInvestments: p.NumberOfInvestments,
		Investments:         p.Investments,
	}
}

// PortfolioAggregator computes read-only portfolio views.
type PortfolioAggregator struct {
	DB  *gorm.DB
	AI  ai.Assistant
	Log *slog.Logger
}

func NewPortfolioAggregator(db *gorm.DB, assistant ai.Assistant, log *slog.Logger) *PortfolioAggregator {
	if assistant == nil {
		assistant = ai.Unavailable{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &PortfolioAggregator{DB: db, AI: assistant, Log: log}
}

// GetPortfolio sums every investment of accountID. An account without
// investments yields zero totals and an empty list.
func (a *PortfolioAggregator) GetPortfolio(ctx context.Context, accountID string) (*Portfolio, error) {
	investments, err := ListInvestments(ctx, a.DB, accountID)
	if err != nil {
		return nil, err
	}

	p := &Portfolio{
		TotalInvested:       models.MoneyFromInt(0),
		TotalExpectedReturn: models.MoneyFromInt(0),
		NumberOfInvestments: len(investments),
		Investments:         investments,
	}
	for _, inv := range investments {
		p.TotalInvested = p.TotalInvested.Add(inv.Amount)
		p.TotalExpectedReturn = p.TotalExpectedReturn.Add(inv.ExpectedReturn)
	}
	p.TotalInvested = p.TotalInvested.Round2()
	p.TotalExpectedReturn = p.TotalExpectedReturn.Round2()
	return p, nil
}

// RiskSummary describes the risk exposure of the portfolio of accountID. AI
// failures produce RiskSummaryUnavailable rather than an error.
func (a *PortfolioAggregator) RiskSummary(ctx context.Context, accountID string) (string, error) {
	p, err := a.GetPortfolio(ctx, accountID)
	if err != nil {
		return "", err
	}
	summary, err := a.AI.SummarizeRisk(ctx, p.snapshot())
	if err != nil {
		a.Log.Warn("risk summary generation failed", slog.String("user_id", accountID), slog.String("error", err.Error()))
		return RiskSummaryUnavailable, nil
	}
	return summary, nil
}
