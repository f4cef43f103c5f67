package users

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"gripinvest/controllers"
	"gripinvest/middleware"
	"gripinvest/models"
	"gripinvest/services"
	"gripinvest/utils"
)

type InvestmentController struct {
	Ledger    *services.InvestmentLedger
	Portfolio *services.PortfolioAggregator
	Log       *slog.Logger
}

func NewInvestmentController(ledger *services.InvestmentLedger, portfolio *services.PortfolioAggregator, log *slog.Logger) *InvestmentController {
	if log == nil {
		log = slog.Default()
	}
	return &InvestmentController{Ledger: ledger, Portfolio: portfolio, Log: log}
}

type CreateInvestmentRequest struct {
	ProductID string          `json:"productId" validate:"required"`
	Amount    json.RawMessage `json:"amount"`
}

// parseAmount accepts a JSON number or a numeric string.
func parseAmount(raw json.RawMessage) (models.Money, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.Money{}, false
	}
	s := string(raw)
	if raw[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return models.Money{}, false
		}
		s = unq
	}
	m, err := models.ParseMoney(s)
	if err != nil {
		return models.Money{}, false
	}
	return m, true
}

// POST /api/investments
func (c *InvestmentController) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := controllers.RequireUserID(w, r)
	if !ok {
		return
	}
	var req CreateInvestmentRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid investment amount."})
		return
	}

	inv, err := c.Ledger.CreateInvestment(r.Context(), uid, req.ProductID, amount)
	if err != nil {
		controllers.WriteError(w, r, c.Log, err)
		return
	}
	c.Log.Info("investment created", "user_id", uid, "investment_id", inv.ID, "product_id", inv.ProductID, "amount", inv.Amount.String())
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Investment created successfully", Data: inv})
}

// GET /api/investments
func (c *InvestmentController) Portfolio(w http.ResponseWriter, r *http.Request) {
	uid, ok := controllers.RequireUserID(w, r)
	if !ok {
		return
	}
	p, err := c.Portfolio.GetPortfolio(r.Context(), uid)
	if err != nil {
		controllers.WriteError(w, r, c.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: p})
}

// GET /api/investments/summary
func (c *InvestmentController) Summary(w http.ResponseWriter, r *http.Request) {
	uid, ok := controllers.RequireUserID(w, r)
	if !ok {
		return
	}
	summary, err := c.Portfolio.RiskSummary(r.Context(), uid)
	if err != nil {
		controllers.WriteError(w, r, c.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]string{"summary": summary}})
}
