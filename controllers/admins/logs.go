package admins

import (
	"log/slog"
	"net/http"
	"strings"

	"gripinvest/controllers"
	"gripinvest/services"
	"gripinvest/utils"
)

type LogController struct {
	Logs *services.TransactionLogs
	Log  *slog.Logger
}

func NewLogController(logs *services.TransactionLogs, log *slog.Logger) *LogController {
	return &LogController{Logs: logs, Log: log}
}

// GET /api/logs?userId=&email=
func (c *LogController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := c.Logs.List(r.Context(), services.LogFilter{
		UserID: strings.TrimSpace(q.Get("userId")),
		Email:  strings.TrimSpace(q.Get("email")),
	})
	if err != nil {
		controllers.WriteError(w, r, c.Log, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: entries})
}
