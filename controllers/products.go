package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"gripinvest/ai"
	"gripinvest/models"
	"gripinvest/utils"

	"github.com/gorilla/mux"
)

// Catalog is the read side of the product catalog.
type Catalog interface {
	ListAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// Recommender produces product suggestions for a user.
type Recommender interface {
	Recommendations(ctx context.Context, userID string, catalog []models.Product) ([]ai.Recommendation, error)
}

type ProductController struct {
	Catalog     Catalog
	Recommender Recommender
	Log         *slog.Logger
}

func NewProductController(catalog Catalog, rec Recommender, log *slog.Logger) *ProductController {
	return &ProductController{Catalog: catalog, Recommender: rec, Log: log}
}

// GET /api/products
func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	products, err := c.Catalog.ListAll(r.Context())
	if err != nil {
		WriteError(w, r, c.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: products})
}

// GET /api/products/{id}
func (c *ProductController) Get(w http.ResponseWriter, r *http.Request) {
	p, err := c.Catalog.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, r, c.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: p})
}

// GET /api/products/recommendations
func (c *ProductController) Recommendations(w http.ResponseWriter, r *http.Request) {
	uid, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	products, err := c.Catalog.ListAll(r.Context())
	if err != nil {
		WriteError(w, r, c.Log, err)
		return
	}
	recs, err := c.Recommender.Recommendations(r.Context(), uid, products)
	if err != nil {
		WriteError(w, r, c.Log, err)
		return
	}
	if recs == nil {
		recs = []ai.Recommendation{}
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: recs})
}
