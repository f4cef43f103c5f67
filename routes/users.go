package routes

import (
	"net/http"

	"gripinvest/controllers"
	"gripinvest/controllers/auth"
	"gripinvest/controllers/users"
	"gripinvest/middleware"

	"github.com/gorilla/mux"
)

// UsersRoutes registers the public and authenticated user endpoints on api.
func UsersRoutes(api *mux.Router, d Deps, authn *middleware.Authenticator) {
	authLimiter := d.limiter("auth", d.Rate.AuthMax, d.Rate.Window)
	otp := &middleware.OTPGuard{
		PerEmail: d.limiter("otp:email", d.Rate.OTPPerEmail, d.Rate.OTPWindow),
		PerIP:    d.limiter("otp:ip", d.Rate.OTPPerIP, d.Rate.OTPWindow),
	}
	logins := &middleware.LoginGuard{
		Store:       d.Store,
		MaxFailures: d.Rate.LoginFailures,
		Lockout:     d.Rate.LoginLockout,
		Log:         d.Log,
	}
	authCtl := auth.NewController(d.Users, d.Tokens, logins, otp, d.Log)

	a := api.PathPrefix("/auth").Subrouter()
	a.Use(authLimiter.Middleware)
	a.HandleFunc("/signup", authCtl.Signup).Methods(http.MethodPost)
	a.HandleFunc("/login", authCtl.Login).Methods(http.MethodPost)
	a.HandleFunc("/forgot-password", authCtl.ForgotPassword).Methods(http.MethodPost)
	a.HandleFunc("/reset-password", authCtl.ResetPassword).Methods(http.MethodPost)
	a.HandleFunc("/password-strength", authCtl.PasswordStrength).Methods(http.MethodPost)
	a.Handle("/logout", authn.Require(http.HandlerFunc(authCtl.Logout))).Methods(http.MethodPost)

	profile := users.NewProfileController(d.Users, d.Log)
	api.Handle("/users/profile", authn.Require(http.HandlerFunc(profile.Get))).Methods(http.MethodGet)
	api.Handle("/users/profile", authn.Require(http.HandlerFunc(profile.Update))).Methods(http.MethodPut)

	products := controllers.NewProductController(d.Catalog, d.Users, d.Log)
	api.Handle("/products/recommendations", authn.Require(http.HandlerFunc(products.Recommendations))).Methods(http.MethodGet)
	api.HandleFunc("/products", products.List).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", products.Get).Methods(http.MethodGet)

	inv := users.NewInvestmentController(d.Ledger, d.Portfolio, d.Log)
	api.Handle("/investments", authn.Require(http.HandlerFunc(inv.Create))).Methods(http.MethodPost)
	api.Handle("/investments", authn.Require(http.HandlerFunc(inv.Portfolio))).Methods(http.MethodGet)
	api.Handle("/investments/summary", authn.Require(http.HandlerFunc(inv.Summary))).Methods(http.MethodGet)
}
