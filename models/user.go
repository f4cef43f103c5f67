package models

import "time"

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskModerate, RiskHigh:
		return true
	}
	return false
}

// User is the account owner. Balance is mutated only through the account ledger.
type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	FirstName    string    `gorm:"column:first_name;size:100;not null" json:"firstName"`
	LastName     string    `gorm:"column:last_name;size:100" json:"lastName"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	RiskAppetite RiskLevel `gorm:"column:risk_appetite;type:varchar(16);default:'moderate'" json:"riskAppetite"`
	Balance      Money     `gorm:"type:decimal(12,2);not null" json:"balance"`
	IsAdmin      bool      `gorm:"column:is_admin;default:false" json:"isAdmin"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"-"`
}

func (User) TableName() string {
	return "users"
}
