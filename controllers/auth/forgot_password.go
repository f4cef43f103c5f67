package auth

import (
	"net/http"

	"gripinvest/controllers"
	"gripinvest/middleware"
	"gripinvest/utils"
)

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	OTP      string `json:"otp" validate:"required,min=6,max=6"`
	Password string `json:"password" validate:"required"`
}

// POST /api/auth/forgot-password
func (c *Controller) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if d := c.OTP.Allow(r, req.Email); !d.Allowed {
		middleware.WriteTooManyRequests(w, d.RetryAfter)
		return
	}
	if err := c.Users.RequestPasswordReset(r.Context(), req.Email); err != nil {
		controllers.WriteError(w, r, c.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OTP sent to your email."})
}

// POST /api/auth/reset-password
func (c *Controller) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if err := c.Users.ResetPassword(r.Context(), req.Email, req.OTP, req.Password); err != nil {
		controllers.WriteError(w, r, c.Log, err)
		return
	}
	c.Logins.Succeeded(r.Context(), req.Email)
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Password has been reset successfully."})
}
