package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPortfolio_Empty(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "100.00")

	p, err := NewPortfolioAggregator(db, nil, nil).GetPortfolio(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.00", p.TotalInvested.String())
	assert.Equal(t, "0.00", p.TotalExpectedReturn.String())
	assert.Zero(t, p.NumberOfInvestments)
	require.NotNil(t, p.Investments)

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalInvested":0.00,"totalExpectedReturn":0.00,"numberOfInvestments":0,"investments":[]}`, string(b))
}

func TestGetPortfolio_Sums(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "50000.00")
	bond := createProduct(t, db, "8.00", 12, "1000.00", withName("Bond"))
	fd := createProduct(t, db, "6.00", 24, "500.00", withName("FD"))
	ledger := NewInvestmentLedger(db, nil)
	ctx := context.Background()

	_, err := ledger.CreateInvestment(ctx, u.ID, bond.ID, mustMoney(t, "2000"))
	require.NoError(t, err)
	_, err = ledger.CreateInvestment(ctx, u.ID, fd.ID, mustMoney(t, "1000.50"))
	require.NoError(t, err)

	other := createUser(t, db, "50000.00")
	_, err = ledger.CreateInvestment(ctx, other.ID, bond.ID, mustMoney(t, "3000"))
	require.NoError(t, err)

	agg := NewPortfolioAggregator(db, nil, nil)
	p, err := agg.GetPortfolio(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.NumberOfInvestments)
	assert.Equal(t, "3000.50", p.TotalInvested.String())
	// 2160.00 + 1000.50 * 1.12 = 1120.56
	assert.Equal(t, "3280.56", p.TotalExpectedReturn.String())
	for _, inv := range p.Investments {
		require.NotNil(t, inv.Product)
		assert.Equal(t, u.ID, inv.UserID)
	}

	again, err := agg.GetPortfolio(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, p.TotalInvested.String(), again.TotalInvested.String())
	assert.Equal(t, p.TotalExpectedReturn.String(), again.TotalExpectedReturn.String())
	assert.Equal(t, p.NumberOfInvestments, again.NumberOfInvestments)
}

func TestRiskSummary(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "50000.00")
	ctx := context.Background()

	out, err := NewPortfolioAggregator(db, &stubAssistant{summary: "Concentrated in bonds."}, nil).RiskSummary(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Concentrated in bonds.", out)

	out, err = NewPortfolioAggregator(db, &stubAssistant{err: errStubAI}, nil).RiskSummary(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, RiskSummaryUnavailable, out)
}
