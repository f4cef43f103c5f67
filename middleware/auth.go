package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"gripinvest/models"
	"gripinvest/services"
	"gripinvest/utils"
)

// UserLookup loads the account behind a token.
type UserLookup interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// Authenticator validates bearer tokens and resolves them to a current user.
type Authenticator struct {
	Tokens *utils.TokenManager
	Users  UserLookup
	Log    *slog.Logger
}

func NewAuthenticator(tokens *utils.TokenManager, users UserLookup, log *slog.Logger) *Authenticator {
	if log == nil {
		log = slog.Default()
	}
	return &Authenticator{Tokens: tokens, Users: users, Log: log}
}

// Require rejects requests without a valid token for an existing user. The
// admin flag is taken from the stored user, not from the token.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := utils.BearerToken(r)
		if !ok {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "No token, authorization denied."})
			return
		}
		claims, err := a.Tokens.Validate(r.Context(), tok)
		if err != nil {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Token is not valid."})
			return
		}
		user, err := a.Users.Get(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Token is not valid."})
				return
			}
			a.Log.Error("auth user lookup failed", "user_id", claims.UserID, "error", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
			return
		}
		claims.IsAdmin = user.IsAdmin
		setIdentity(r.Context(), user.ID, user.Email)
		next.ServeHTTP(w, r.WithContext(utils.WithUser(r.Context(), claims)))
	})
}

// RequireAdmin is Require followed by an admin check.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return a.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !utils.IsAdmin(r) {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Access denied. Admins only."})
			return
		}
		next.ServeHTTP(w, r)
	}))
}
