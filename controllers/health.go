package controllers

import (
	"context"
	"io"
	"net/http"
	"time"

	"gripinvest/utils"
)

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthController struct {
	DB  Pinger
	Now func() time.Time
}

func NewHealthController(db Pinger) *HealthController {
	return &HealthController{DB: db, Now: time.Now}
}

type healthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
	Error     string `json:"error,omitempty"`
}

// GET /health
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	st := healthStatus{Status: "UP", Timestamp: c.Now().UTC().Format(time.RFC3339), Database: "Connected"}
	if err := c.DB.Ping(ctx); err != nil {
		st.Status, st.Database, st.Error = "DOWN", "Disconnected", err.Error()
		utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{Success: false, Message: "Service unavailable", Data: st})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Healthy", Data: st})
}

// GET /
func (c *HealthController) Banner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Grip Invest API is running.")
}
