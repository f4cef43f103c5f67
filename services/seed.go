package services

import (
	"context"
	"fmt"
	"log/slog"

	"gripinvest/models"
	"gripinvest/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type seedUser struct {
	firstName, lastName, email, password string
	risk                                 models.RiskLevel
	admin                                bool
}

var seedUsers = []seedUser{
	{"Admin", "User", "admin@example.com", "admin123", models.RiskHigh, true},
	{"Regular", "User", "user@example.com", "user123", models.RiskModerate, false},
}

func money(v string) models.Money {
	m, err := models.ParseMoney(v)
	if err != nil {
		panic(err)
	}
	return m
}

func moneyPtr(v string) *models.Money {
	m := money(v)
	return &m
}

var seedProducts = []models.Product{
	{
		Name: "Tech Growth Fund", InvestmentType: models.InvestmentMF, TenureMonths: 60,
		AnnualYield: money("12.50"), RiskLevel: models.RiskHigh,
		MinInvestment: money("5000"), MaxInvestment: moneyPtr("50000"),
		Description: "Invest in leading technology companies for high growth potential.",
	},
	{
		Name: "Stable Bond Fund", InvestmentType: models.InvestmentBond, TenureMonths: 36,
		AnnualYield: money("6.00"), RiskLevel: models.RiskLow,
		MinInvestment: money("1000"), MaxInvestment: moneyPtr("100000"),
		Description: "Secure your capital with government and corporate bonds.",
	},
	{
		Name: "Real Estate ETF", InvestmentType: models.InvestmentETF, TenureMonths: 120,
		AnnualYield: money("8.75"), RiskLevel: models.RiskModerate,
		MinInvestment: money("2000"), MaxInvestment: moneyPtr("75000"),
		Description: "Gain exposure to the real estate market through a diversified ETF.",
	},
	{
		Name: "High-Yield FD", InvestmentType: models.InvestmentFD, TenureMonths: 24,
		AnnualYield: money("7.25"), RiskLevel: models.RiskLow,
		MinInvestment: money("500"), MaxInvestment: moneyPtr("20000"),
		Description: "Fixed deposit with attractive returns for short to medium term.",
	},
}

// Seed loads the development fixtures: an admin, a regular user, the starter
// catalog and one investment for the regular user. Existing rows are left
// alone, so it can be run repeatedly.
func Seed(ctx context.Context, db *gorm.DB, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	ids := map[string]string{}
	for _, su := range seedUsers {
		var u models.User
		err := db.WithContext(ctx).Where("email = ?", su.email).First(&u).Error
		if err == nil {
			ids[su.email] = u.ID
			continue
		}
		hash, err := utils.HashPassword(su.password)
		if err != nil {
			return err
		}
		u = models.User{
			ID:           uuid.NewString(),
			FirstName:    su.firstName,
			LastName:     su.lastName,
			Email:        su.email,
			PasswordHash: hash,
			RiskAppetite: su.risk,
			Balance:      StartingBalance,
			IsAdmin:      su.admin,
		}
		if err := db.WithContext(ctx).Create(&u).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", su.email, err)
		}
		ids[su.email] = u.ID
		log.Info("seeded user", slog.String("email", su.email), slog.Bool("admin", su.admin))
	}

	var techFund string
	for _, sp := range seedProducts {
		var p models.Product
		err := db.WithContext(ctx).Where("name = ?", sp.Name).First(&p).Error
		if err != nil {
			p = sp
			p.ID = uuid.NewString()
			if err := db.WithContext(ctx).Create(&p).Error; err != nil {
				return fmt.Errorf("seed product %s: %w", sp.Name, err)
			}
			log.Info("seeded product", slog.String("name", p.Name))
		}
		if p.Name == "Tech Growth Fund" {
			techFund = p.ID
		}
	}

	userID := ids["user@example.com"]
	var n int64
	if err := db.WithContext(ctx).Model(&models.Investment{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 || techFund == "" {
		return nil
	}
	ledger := NewInvestmentLedger(db, nil)
	if _, err := ledger.CreateInvestment(ctx, userID, techFund, money("5000")); err != nil {
		return fmt.Errorf("seed investment: %w", err)
	}
	log.Info("seeded initial investment", slog.String("email", "user@example.com"))
	return nil
}
