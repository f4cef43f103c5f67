package routes

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gripinvest/config"
	"gripinvest/controllers"
	"gripinvest/database"
	"gripinvest/middleware"
	"gripinvest/services"
	"gripinvest/utils"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// Deps is everything the router needs, built once in main.
type Deps struct {
	Log       *slog.Logger
	DB        *gorm.DB
	Tokens    *utils.TokenManager
	Users     *services.UserService
	Catalog   *services.ProductCatalog
	Ledger    *services.InvestmentLedger
	Portfolio *services.PortfolioAggregator
	Logs      *services.TransactionLogs
	Metrics   *middleware.Metrics
	Store     middleware.Store
	Rate      config.RateConfig
	Origins   []string
}

func (d Deps) limiter(scope string, max int, window time.Duration) *middleware.Limiter {
	return &middleware.Limiter{
		Store:          d.Store,
		Scope:          scope,
		Max:            max,
		Window:         window,
		TrustedProxies: d.Rate.TrustedProxies,
		Metrics:        d.Metrics,
		Log:            d.Log,
	}
}

func defaultOrigins(extra []string) []string {
	origins := []string{"http://localhost:3000", "http://localhost:5173", "http://127.0.0.1:3000"}
	for _, o := range extra {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func InitRouter(d Deps) *mux.Router {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = middleware.NewMetrics()
	}
	if d.Store == nil {
		d.Store = middleware.NewMemoryStore()
	}

	r := mux.NewRouter()
	r.Use(d.Metrics.Middleware)
	r.Use(handlers.CORS(
		handlers.AllowedOrigins(defaultOrigins(d.Origins)),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"}),
		handlers.AllowCredentials(),
	))

	health := controllers.NewHealthController(controllers.PingerFunc(func(ctx context.Context) error {
		return database.Ping(ctx, d.DB, 2*time.Second)
	}))
	r.HandleFunc("/", health.Banner).Methods(http.MethodGet)
	r.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	r.Handle("/metrics", d.Metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.PathPrefix("/").HandlerFunc(optionsHandler).Methods(http.MethodOptions)
	api.Use(middleware.TransactionLogger(d.Logs, d.Log))
	api.Use(d.limiter("api", d.Rate.APIMax, d.Rate.Window).Middleware)

	authn := middleware.NewAuthenticator(d.Tokens, d.Users, d.Log)
	UsersRoutes(api, d, authn)
	SetAdminRoutes(api, d, authn)

	return r
}
