package middleware

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"gripinvest/utils"
)

// ErrBadRequest is returned once ValidateJSON has already written the response.
var ErrBadRequest = errors.New("request rejected")

// ValidateJSON decodes a JSON payload into dst and runs utils.ValidateStruct.
// On failure the response is written and ErrBadRequest is returned.
func ValidateJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err != nil || mt != "application/json" {
			utils.WriteJSON(w, http.StatusUnsupportedMediaType, utils.APIResponse{Success: false, Message: "Content-Type must be application/json"})
			return ErrBadRequest
		}
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteJSON(w, http.StatusRequestEntityTooLarge, utils.APIResponse{Success: false, Message: "Request body too large"})
			return ErrBadRequest
		}
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid JSON body"})
		return ErrBadRequest
	}
	if err := utils.ValidateStruct(dst); err != nil {
		resp := utils.APIResponse{Success: false, Message: err.Error()}
		var ve *utils.ValidationError
		if errors.As(err, &ve) {
			resp.Data = map[string]string{"field": ve.Field}
		}
		utils.WriteJSON(w, http.StatusBadRequest, resp)
		return ErrBadRequest
	}
	return nil
}
