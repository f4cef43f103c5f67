package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gripinvest/models"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// generator is the subset of *genai.Models used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini implements Assistant on the Gemini API.
type Gemini struct {
	gen   generator
	model string
	log   *slog.Logger
}

// NewGemini creates a client for the Gemini API backend.
func NewGemini(ctx context.Context, apiKey, model string, log *slog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrUnavailable
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGemini(client.Models, model, log), nil
}

func newGemini(gen generator, model string, log *slog.Logger) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = slog.Default()
	}
	return &Gemini{gen: gen, model: model, log: log}
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.gen.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		g.log.Warn("ai generation failed", slog.String("model", g.model), slog.String("error", err.Error()))
		return "", fmt.Errorf("ai content generation failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("ai content generation failed: empty response")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("ai content generation failed: empty response")
	}
	return strings.TrimSpace(b.String()), nil
}

func (g *Gemini) DescribeProduct(ctx context.Context, p ProductDetails) (string, error) {
	return g.generate(ctx, describePrompt(p))
}

func (g *Gemini) ScorePassword(ctx context.Context, password string) (string, error) {
	return g.generate(ctx, passwordPrompt(password))
}

func (g *Gemini) Recommend(ctx context.Context, risk models.RiskLevel, products []models.Product, investments []models.Investment) ([]Recommendation, error) {
	text, err := g.generate(ctx, recommendPrompt(risk, products, investments))
	if err != nil {
		return nil, err
	}
	recs, err := ParseRecommendations(text)
	if err != nil {
		g.log.Warn("ai recommendation parse failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get recommendations from ai service: %w", err)
	}
	return recs, nil
}

func (g *Gemini) SummarizeError(ctx context.Context, message string) (string, error) {
	return g.generate(ctx, errorPrompt(message))
}

func (g *Gemini) SummarizeRisk(ctx context.Context, p PortfolioSnapshot) (string, error) {
	return g.generate(ctx, riskPrompt(p))
}

// ParseRecommendations extracts the JSON array between the first '[' and the
// last ']' of text. Models tend to wrap JSON in markdown fences.
func ParseRecommendations(text string) ([]Recommendation, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return nil, errors.New("invalid JSON response from AI")
	}
	var recs []Recommendation
	if err := json.Unmarshal([]byte(text[start:end+1]), &recs); err != nil {
		return nil, fmt.Errorf("decode recommendations: %w", err)
	}
	return recs, nil
}
