package auth

import (
	"net/http"

	"gripinvest/middleware"
	"gripinvest/utils"
)

type PasswordStrengthRequest struct {
	Password string `json:"password" validate:"required"`
}

// POST /api/auth/password-strength
func (c *Controller) PasswordStrength(w http.ResponseWriter, r *http.Request) {
	var req PasswordStrengthRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    map[string]string{"strength": c.Users.PasswordStrength(r.Context(), req.Password)},
	})
}
