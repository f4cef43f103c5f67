package auth

import (
	"log/slog"
	"net/http"

	"gripinvest/controllers"
	"gripinvest/middleware"
	"gripinvest/services"
	"gripinvest/utils"
)

// Controller serves the /api/auth endpoints.
type Controller struct {
	Users  *services.UserService
	Tokens *utils.TokenManager
	Logins *middleware.LoginGuard
	OTP    *middleware.OTPGuard
	Log    *slog.Logger
}

func NewController(users *services.UserService, tokens *utils.TokenManager, logins *middleware.LoginGuard, otp *middleware.OTPGuard, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{Users: users, Tokens: tokens, Logins: logins, OTP: otp, Log: log}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
	Token     string `json:"token"`
}

// POST /api/auth/login
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	if retry, locked := c.Logins.Locked(r.Context(), req.Email); locked {
		middleware.WriteTooManyRequests(w, retry)
		return
	}

	user, err := c.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if services.KindOf(err) == services.KindUnauthorized {
			c.Logins.Failed(r.Context(), req.Email)
		}
		controllers.WriteError(w, r, c.Log, err)
		return
	}
	c.Logins.Succeeded(r.Context(), req.Email)

	token, err := c.Tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		controllers.WriteError(w, r, c.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Login successful",
		Data: LoginResponse{
			ID:        user.ID,
			FirstName: user.FirstName,
			Email:     user.Email,
			IsAdmin:   user.IsAdmin,
			Token:     token,
		},
	})
}
