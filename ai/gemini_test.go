package ai

import (
	"context"
	"errors"
	"testing"

	"gripinvest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type stubGenerator struct {
	text    string
	err     error
	model   string
	prompts []string
}

func (s *stubGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.model = model
	for _, c := range contents {
		for _, p := range c.Parts {
			s.prompts = append(s.prompts, p.Text)
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(s.text, genai.RoleModel)}},
	}, nil
}

func TestGemini_DescribeProduct(t *testing.T) {
	gen := &stubGenerator{text: "  A steady fund.\n"}
	g := newGemini(gen, "", nil)

	out, err := g.DescribeProduct(context.Background(), ProductDetails{
		Name:           "Stable Bond Fund",
		InvestmentType: models.InvestmentBond,
		TenureMonths:   36,
		AnnualYield:    models.MoneyFromInt(6),
		RiskLevel:      models.RiskLow,
	})
	require.NoError(t, err)
	assert.Equal(t, "A steady fund.", out)
	assert.Equal(t, DefaultModel, gen.model)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Name: Stable Bond Fund")
	assert.Contains(t, gen.prompts[0], "Annual Yield: 6.00%")
}

func TestGemini_ErrorPropagates(t *testing.T) {
	g := newGemini(&stubGenerator{err: errors.New("quota")}, "gemini-test", nil)

	_, err := g.SummarizeError(context.Background(), "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
}

func TestGemini_EmptyResponse(t *testing.T) {
	g := newGemini(&stubGenerator{text: ""}, "", nil)
	_, err := g.ScorePassword(context.Background(), "hunter22")
	assert.Error(t, err)
}

func TestGemini_Recommend(t *testing.T) {
	gen := &stubGenerator{text: "```json\n[{\"productId\":\"p1\",\"productName\":\"Stable Bond Fund\",\"reason\":\"low risk\",\"annualYield\":\"6.00%\"}]\n```"}
	g := newGemini(gen, "", nil)

	recs, err := g.Recommend(context.Background(), models.RiskLow,
		[]models.Product{{ID: "p1", Name: "Stable Bond Fund", RiskLevel: models.RiskLow, AnnualYield: models.MoneyFromInt(6)}},
		nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "p1", recs[0].ProductID)
	assert.Contains(t, gen.prompts[0], "'low' risk appetite")
	assert.Contains(t, gen.prompts[0], "- ID: p1, Name: Stable Bond Fund (Risk: low, Yield: 6.00%)")
	assert.Contains(t, gen.prompts[0], "current portfolio:\nNone")
}

func TestParseRecommendations(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int
		wantErr bool
	}{
		{name: "bare array", in: `[{"productId":"a"},{"productId":"b"}]`, want: 2},
		{name: "surrounding prose", in: "Sure! [ {\"productId\":\"a\"} ] hope it helps", want: 1},
		{name: "empty array", in: "[]", want: 0},
		{name: "no array", in: "nothing here", wantErr: true},
		{name: "broken json", in: "[{\"productId\":}]", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecommendations(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestRiskPrompt(t *testing.T) {
	p := PortfolioSnapshot{
		TotalInvested:       models.MoneyFromInt(5000),
		TotalExpectedReturn: models.MoneyFromInt(8125),
		NumberOfInvestments: 1,
		Investments: []models.Investment{{
			Amount:  models.MoneyFromInt(5000),
			Product: &models.Product{Name: "Tech Growth Fund", InvestmentType: models.InvestmentMF, RiskLevel: models.RiskHigh},
		}},
	}
	out := riskPrompt(p)
	assert.Contains(t, out, "Total Invested: 5000.00")
	assert.Contains(t, out, "Number of Investments: 1")
	assert.Contains(t, out, "- Product: Tech Growth Fund, Type: mf, Amount: 5000.00, Risk: high")
}

func TestUnavailable(t *testing.T) {
	var a Assistant = Unavailable{}
	_, err := a.SummarizeRisk(context.Background(), PortfolioSnapshot{})
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = a.Recommend(context.Background(), models.RiskLow, nil, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}
