package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// OTPGuard throttles password-reset codes per email and per client IP.
type OTPGuard struct {
	PerEmail *Limiter
	PerIP    *Limiter
}

// Allow records one OTP request. The IP is checked first so a single client
// cannot exhaust the per-email budget of other addresses.
func (g *OTPGuard) Allow(r *http.Request, email string) Decision {
	if g == nil {
		return Decision{Allowed: true}
	}
	if d := g.PerIP.Allow(r.Context(), g.PerIP.ClientIP(r)); !d.Allowed {
		return d
	}
	return g.PerEmail.Allow(r.Context(), strings.ToLower(strings.TrimSpace(email)))
}

// LoginGuard locks an email out after MaxFailures failed logins within Lockout.
type LoginGuard struct {
	Store       Store
	MaxFailures int
	Lockout     time.Duration
	Log         *slog.Logger
}

func loginKey(email string) string {
	return "login:fail:" + strings.ToLower(strings.TrimSpace(email))
}

// Locked reports whether email is locked and for how long.
func (g *LoginGuard) Locked(ctx context.Context, email string) (time.Duration, bool) {
	if g == nil || g.MaxFailures <= 0 {
		return 0, false
	}
	n, ttl, err := g.Store.Count(ctx, loginKey(email))
	if err != nil {
		g.logger().Warn("login guard lookup failed", "error", err)
		return 0, false
	}
	return ttl, n >= int64(g.MaxFailures)
}

func (g *LoginGuard) Failed(ctx context.Context, email string) {
	if g == nil || g.MaxFailures <= 0 {
		return
	}
	if _, _, err := g.Store.Hit(ctx, loginKey(email), g.Lockout); err != nil {
		g.logger().Warn("login guard record failed", "error", err)
	}
}

func (g *LoginGuard) Succeeded(ctx context.Context, email string) {
	if g == nil || g.MaxFailures <= 0 {
		return
	}
	if err := g.Store.Reset(ctx, loginKey(email)); err != nil {
		g.logger().Warn("login guard reset failed", "error", err)
	}
}

func (g *LoginGuard) logger() *slog.Logger {
	if g.Log != nil {
		return g.Log
	}
	return slog.Default()
}
