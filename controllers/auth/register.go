package auth

import (
	"net/http"

	"gripinvest/controllers"
	"gripinvest/middleware"
	"gripinvest/models"
	"gripinvest/services"
	"gripinvest/utils"
)

type RegisterRequest struct {
	FirstName    string `json:"firstName" validate:"required,nameok"`
	LastName     string `json:"lastName" validate:"max=100"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
	RiskAppetite string `json:"riskAppetite" validate:"oneof=low|moderate|high"`
}

type RegisterResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	Token     string `json:"token"`
}

// POST /api/auth/signup
func (c *Controller) Signup(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	user, err := c.Users.Signup(r.Context(), services.SignupInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Password:     req.Password,
		RiskAppetite: models.RiskLevel(req.RiskAppetite),
	})
	if err != nil {
		controllers.WriteError(w, r, c.Log, err)
		return
	}

	token, err := c.Tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		controllers.WriteError(w, r, c.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "User registered successfully",
		Data:    RegisterResponse{ID: user.ID, FirstName: user.FirstName, Email: user.Email, Token: token},
	})
}
