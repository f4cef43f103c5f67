package admins

import (
	"log/slog"
	"net/http"

	"gripinvest/controllers"
	"gripinvest/middleware"
	"gripinvest/services"
	"gripinvest/utils"

	"github.com/gorilla/mux"
)

type ProductController struct {
	Catalog *services.ProductCatalog
	Log     *slog.Logger
}

func NewProductController(catalog *services.ProductCatalog, log *slog.Logger) *ProductController {
	return &ProductController{Catalog: catalog, Log: log}
}

// POST /api/products
func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if err := middleware.ValidateJSON(w, r, &in); err != nil {
		return
	}
	p, err := c.Catalog.Create(r.Context(), in)
	if err != nil {
		controllers.WriteError(w, r, c.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Product created successfully", Data: p})
}

// PUT /api/products/{id}
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if err := middleware.ValidateJSON(w, r, &in); err != nil {
		return
	}
	p, err := c.Catalog.Update(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		controllers.WriteError(w, r, c.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Product updated successfully", Data: p})
}

// DELETE /api/products/{id}
func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.Catalog.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		controllers.WriteError(w, r, c.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Product deleted successfully"})
}
