package models

import "time"

type InvestmentType string

const (
	InvestmentBond  InvestmentType = "bond"
	InvestmentFD    InvestmentType = "fd"
	InvestmentMF    InvestmentType = "mf"
	InvestmentETF   InvestmentType = "etf"
	InvestmentOther InvestmentType = "other"
)

func (t InvestmentType) Valid() bool {
	switch t {
	case InvestmentBond, InvestmentFD, InvestmentMF, InvestmentETF, InvestmentOther:
		return true
	}
	return false
}

type Product struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name           string         `gorm:"size:255;not null" json:"name"`
	InvestmentType InvestmentType `gorm:"column:investment_type;type:varchar(16);not null" json:"investmentType"`
	TenureMonths   int            `gorm:"column:tenure_months;not null" json:"tenureMonths"`
	AnnualYield    Percent        `gorm:"column:annual_yield;type:decimal(5,2);not null" json:"annualYield"`
	RiskLevel      RiskLevel      `gorm:"column:risk_level;type:varchar(16);not null" json:"riskLevel"`
	MinInvestment  Money          `gorm:"column:min_investment;type:decimal(12,2);not null" json:"minInvestment"`
	MaxInvestment  *Money         `gorm:"column:max_investment;type:decimal(12,2)" json:"maxInvestment"`
	Description    string         `gorm:"type:text" json:"description"`
	CreatedAt      time.Time      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt      time.Time      `gorm:"column:updated_at" json:"updatedAt"`
}

func (Product) TableName() string {
	return "investment_products"
}
