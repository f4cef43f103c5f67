package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"gripinvest/services"
	"gripinvest/utils"
)

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	switch services.KindOf(err) {
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindInvalidInput, services.KindInsufficientFunds:
		return http.StatusBadRequest
	case services.KindConflict:
		return http.StatusConflict
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

var sentinelMessages = []struct {
	err error
	msg string
}{
	{services.ErrProductNotFound, "Product not found."},
	{services.ErrAccountNotFound, "User not found."},
	{services.ErrUserNotFound, "User not found."},
	{services.ErrInsufficientFunds, "Insufficient balance."},
	{services.ErrInvalidAmount, "Invalid investment amount."},
	{services.ErrProductInUse, "Cannot delete a product that has investments."},
}

// MessageFor returns the client-facing message for a non-internal error.
func MessageFor(err error) string {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var oob *services.AmountOutOfBoundsError
	if errors.As(err, &oob) {
		return oob.Error()
	}
	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}
	return "Invalid request."
}

// WriteError writes err with its mapped status. Internal errors are logged and
// answered with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		if log == nil {
			log = slog.Default()
		}
		rid, _ := r.Context().Value(utils.RequestIDKey).(string)
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", rid, "error", err)
		utils.WriteJSON(w, status, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, status, utils.APIResponse{Success: false, Message: MessageFor(err)})
}

// RequireUserID reads the authenticated id or writes 401.
func RequireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
	}
	return uid, ok
}
