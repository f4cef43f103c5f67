package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"gripinvest/models"
)

// LogRecorder persists one request record.
type LogRecorder interface {
	Record(ctx context.Context, entry *models.TransactionLog) error
}

// identity is filled by Authenticator.Require further down the chain so the
// logger sees who made the request after the handler returns.
type identity struct {
	mu     sync.Mutex
	userID string
	email  string
}

type identityKey struct{}

func setIdentity(ctx context.Context, userID, email string) {
	if id, ok := ctx.Value(identityKey{}).(*identity); ok {
		id.mu.Lock()
		id.userID, id.email = userID, email
		id.mu.Unlock()
	}
}

// maxLoggedBody caps how much of a failed response is kept as errorMessage.
const maxLoggedBody = 4096

type bodyRecorder struct {
	statusRecorder
	body bytes.Buffer
}

func (b *bodyRecorder) Write(p []byte) (int, error) {
	if room := maxLoggedBody - b.body.Len(); room > 0 {
		if len(p) > room {
			b.body.Write(p[:room])
		} else {
			b.body.Write(p)
		}
	}
	return b.statusRecorder.Write(p)
}

// TransactionLogger records every request after its response is written.
// Recording failures are logged and never reach the client.
func TransactionLogger(rec LogRecorder, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := &identity{}
			br := &bodyRecorder{statusRecorder: statusRecorder{ResponseWriter: w, status: http.StatusOK}}
			next.ServeHTTP(br, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))

			entry := &models.TransactionLog{
				Endpoint:   r.URL.RequestURI(),
				HTTPMethod: r.Method,
				StatusCode: br.status,
				CreatedAt:  time.Now().UTC(),
			}
			id.mu.Lock()
			if id.userID != "" {
				uid, email := id.userID, id.email
				entry.UserID, entry.Email = &uid, &email
			}
			id.mu.Unlock()
			if br.status >= http.StatusBadRequest {
				msg := br.body.String()
				entry.ErrorMessage = &msg
			}

			// the request context may already be cancelled by a timeout
			ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
			defer cancel()
			if err := rec.Record(ctx, entry); err != nil {
				log.Error("transaction log write failed",
					"request_id", requestID(r),
					"endpoint", entry.Endpoint,
					"error", err,
				)
			}
		})
	}
}
