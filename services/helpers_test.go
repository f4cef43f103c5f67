package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gripinvest/ai"
	"gripinvest/database"
	"gripinvest/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func mustMoney(t *testing.T, v string) models.Money {
	t.Helper()
	m, err := models.ParseMoney(v)
	require.NoError(t, err)
	return m
}

func createUser(t *testing.T, db *gorm.DB, balance string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.NewString(),
		FirstName:    "Test",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		RiskAppetite: models.RiskModerate,
		Balance:      mustMoney(t, balance),
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

type productOpt func(*models.Product)

func withMax(v string) productOpt {
	return func(p *models.Product) {
		m, _ := models.ParseMoney(v)
		p.MaxInvestment = &m
	}
}

func withRisk(r models.RiskLevel) productOpt {
	return func(p *models.Product) { p.RiskLevel = r }
}

func withName(n string) productOpt {
	return func(p *models.Product) { p.Name = n }
}

func createProduct(t *testing.T, db *gorm.DB, yield string, tenure int, min string, opts ...productOpt) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:             uuid.NewString(),
		Name:           "Product " + yield,
		InvestmentType: models.InvestmentBond,
		TenureMonths:   tenure,
		AnnualYield:    mustMoney(t, yield),
		RiskLevel:      models.RiskLow,
		MinInvestment:  mustMoney(t, min),
	}
	for _, o := range opts {
		o(p)
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func balanceOf(t *testing.T, db *gorm.DB, id string) models.Money {
	t.Helper()
	b, err := NewAccountLedger(db).Balance(context.Background(), id)
	require.NoError(t, err)
	return b
}

// stubAssistant answers every prompt with fixed values, or fails with err.
type stubAssistant struct {
	err         error
	description string
	strength    string
	summary     string
	recs        []ai.Recommendation

	mu    sync.Mutex
	calls int
}

var errStubAI = errors.New("model overloaded")

func (s *stubAssistant) hit() error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.err
}

func (s *stubAssistant) DescribeProduct(context.Context, ai.ProductDetails) (string, error) {
	if err := s.hit(); err != nil {
		return "", err
	}
	return s.description, nil
}

func (s *stubAssistant) ScorePassword(context.Context, string) (string, error) {
	if err := s.hit(); err != nil {
		return "", err
	}
	return s.strength, nil
}

func (s *stubAssistant) Recommend(context.Context, models.RiskLevel, []models.Product, []models.Investment) ([]ai.Recommendation, error) {
	if err := s.hit(); err != nil {
		return nil, err
	}
	return s.recs, nil
}

func (s *stubAssistant) SummarizeError(_ context.Context, msg string) (string, error) {
	if err := s.hit(); err != nil {
		return "", err
	}
	return s.summary + ": " + msg, nil
}

func (s *stubAssistant) SummarizeRisk(context.Context, ai.PortfolioSnapshot) (string, error) {
	if err := s.hit(); err != nil {
		return "", err
	}
	return s.summary, nil
}
