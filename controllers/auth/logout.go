package auth

import (
	"net/http"

	"gripinvest/utils"
)

// POST /api/auth/logout revokes the presented access token until it expires.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := utils.GetClaims(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	if err := c.Tokens.Revoke(r.Context(), claims.ID, claims.ExpiresAt); err != nil {
		c.Log.Warn("token revoke failed", "user_id", claims.UserID, "error", err)
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Logged out"})
}
