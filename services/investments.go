package services

import (
	"context"
	"fmt"
	"time"

	"gripinvest/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// InvestmentLedger turns a validated amount into an active investment and the
// matching balance debit, atomically.
type InvestmentLedger struct {
	DB       *gorm.DB
	Accounts *AccountLedger
	Now      func() time.Time
}

func NewInvestmentLedger(db *gorm.DB, accounts *AccountLedger) *InvestmentLedger {
	if accounts == nil {
		accounts = NewAccountLedger(db)
	}
	return &InvestmentLedger{DB: db, Accounts: accounts, Now: time.Now}
}

// CreateInvestment validates amount against the product bounds, debits the
// account and records the investment in a single transaction. Nothing is
// persisted unless every step succeeds.
func (l *InvestmentLedger) CreateInvestment(ctx context.Context, accountID, productID string, amount models.Money) (*models.Investment, error) {
	var inv *models.Investment
	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := getProduct(tx, productID)
		if err != nil {
			return err
		}

		var n int64
		if err := tx.Model(&models.User{}).Where("id = ?", accountID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrAccountNotFound
		}

		if err := checkBounds(product, amount); err != nil {
			return err
		}

		if _, err := l.Accounts.Debit(ctx, tx, accountID, amount); err != nil {
			return err
		}

		now := l.now()
		inv = &models.Investment{
			ID:             uuid.NewString(),
			UserID:         accountID,
			ProductID:      product.ID,
			Amount:         amount,
			InvestedAt:     now,
			Status:         models.InvestmentActive,
			ExpectedReturn: ExpectedReturn(amount, product.AnnualYield, product.TenureMonths),
			MaturityDate:   models.NewDate(now).AddMonths(product.TenureMonths),
		}
		if err := tx.Omit("Product").Create(inv).Error; err != nil {
			return fmt.Errorf("record investment: %w", err)
		}
		inv.Product = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (l *InvestmentLedger) now() time.Time {
	if l.Now == nil {
		return time.Now().UTC()
	}
	return l.Now().UTC()
}

func checkBounds(p *models.Product, amount models.Money) error {
	if !amount.IsPositive() || !amount.WholeCents() {
		return ErrInvalidAmount
	}
	if amount.LessThan(p.MinInvestment.Decimal) {
		return &AmountOutOfBoundsError{Bound: BoundMin, Limit: p.MinInvestment}
	}
	if p.MaxInvestment != nil && amount.GreaterThan(p.MaxInvestment.Decimal) {
		return &AmountOutOfBoundsError{Bound: BoundMax, Limit: *p.MaxInvestment}
	}
	return nil
}

// ExpectedReturn is the simple-interest value at maturity:
// amount × (1 + yield/100 × tenure/12), rounded to cents.
func ExpectedReturn(amount models.Money, annualYield models.Percent, tenureMonths int) models.Money {
	interest := amount.Decimal.
		Mul(annualYield.Decimal).
		Mul(decimal.NewFromInt(int64(tenureMonths))).
		Div(hundred.Mul(twelve))
	return models.NewMoney(amount.Decimal.Add(interest)).Round2()
}

// ListInvestments returns the investments of accountID, newest first, with
// their products.
func ListInvestments(ctx context.Context, db *gorm.DB, accountID string) ([]models.Investment, error) {
	investments := []models.Investment{}
	err := db.WithContext(ctx).Preload("Product").
		Where("user_id = ?", accountID).
		Order("invested_at DESC, id ASC").
		Find(&investments).Error
	if err != nil {
		return nil, err
	}
	return investments, nil
}
