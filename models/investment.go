package models

import "time"

type InvestmentStatus string

// An investment starts active; matured and cancelled are terminal.
const (
	InvestmentActive    InvestmentStatus = "active"
	InvestmentMatured   InvestmentStatus = "matured"
	InvestmentCancelled InvestmentStatus = "cancelled"
)

type Investment struct {
	ID             string           `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         string           `gorm:"column:user_id;type:varchar(36);not null;index" json:"userId"`
	ProductID      string           `gorm:"column:product_id;type:varchar(36);not null;index" json:"productId"`
	Amount         Money            `gorm:"type:decimal(12,2);not null" json:"amount"`
	InvestedAt     time.Time        `gorm:"column:invested_at;not null" json:"investedAt"`
	Status         InvestmentStatus `gorm:"type:varchar(16);not null;default:'active'" json:"status"`
	ExpectedReturn Money            `gorm:"column:expected_return;type:decimal(12,2)" json:"expectedReturn"`
	MaturityDate   Date             `gorm:"column:maturity_date;type:date" json:"maturityDate"`

	// Relations
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (Investment) TableName() string {
	return "investments"
}
