package routes

import (
	"net/http"

	"gripinvest/controllers/admins"
	"gripinvest/middleware"

	"github.com/gorilla/mux"
)

// SetAdminRoutes registers the catalog management and log endpoints.
func SetAdminRoutes(api *mux.Router, d Deps, authn *middleware.Authenticator) {
	products := admins.NewProductController(d.Catalog, d.Log)
	api.Handle("/products", authn.RequireAdmin(http.HandlerFunc(products.Create))).Methods(http.MethodPost)
	api.Handle("/products/{id}", authn.RequireAdmin(http.HandlerFunc(products.Update))).Methods(http.MethodPut)
	api.Handle("/products/{id}", authn.RequireAdmin(http.HandlerFunc(products.Delete))).Methods(http.MethodDelete)

	logs := admins.NewLogController(d.Logs, d.Log)
	api.Handle("/logs", authn.RequireAdmin(http.HandlerFunc(logs.List))).Methods(http.MethodGet)
}
