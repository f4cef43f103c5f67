package users

import (
	"log/slog"
	"net/http"
	"time"

	"gripinvest/controllers"
	"gripinvest/middleware"
	"gripinvest/models"
	"gripinvest/services"
	"gripinvest/utils"
)

type ProfileController struct {
	Users *services.UserService
	Log   *slog.Logger
}

func NewProfileController(users *services.UserService, log *slog.Logger) *ProfileController {
	return &ProfileController{Users: users, Log: log}
}

type ProfileResponse struct {
	ID           string           `json:"id"`
	FirstName    string           `json:"firstName"`
	LastName     string           `json:"lastName"`
	Email        string           `json:"email"`
	RiskAppetite models.RiskLevel `json:"riskAppetite"`
	Balance      models.Money     `json:"balance"`
	CreatedAt    time.Time        `json:"createdAt"`
}

func profileOf(u *models.User) ProfileResponse {
	return ProfileResponse{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		RiskAppetite: u.RiskAppetite,
		Balance:      u.Balance,
		CreatedAt:    u.CreatedAt,
	}
}

type UpdateProfileRequest struct {
	FirstName    *string `json:"firstName" validate:"nameok"`
	LastName     *string `json:"lastName" validate:"max=100"`
	RiskAppetite *string `json:"riskAppetite" validate:"oneof=low|moderate|high"`
}

// GET /api/users/profile
func (c *ProfileController) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := controllers.RequireUserID(w, r)
	if !ok {
		return
	}
	u, err := c.Users.Get(r.Context(), uid)
	if err != nil {
		controllers.WriteError(w, r, c.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: profileOf(u)})
}

// PUT /api/users/profile
func (c *ProfileController) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := controllers.RequireUserID(w, r)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	in := services.ProfileInput{FirstName: req.FirstName, LastName: req.LastName}
	if req.RiskAppetite != nil {
		risk := models.RiskLevel(*req.RiskAppetite)
		in.RiskAppetite = &risk
	}
	u, err := c.Users.UpdateProfile(r.Context(), uid, in)
	if err != nil {
		controllers.WriteError(w, r, c.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Profile updated successfully", Data: profileOf(u)})
}
