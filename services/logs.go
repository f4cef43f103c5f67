package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gripinvest/ai"
	"gripinvest/models"

	"gorm.io/gorm"
)

const logListLimit = 100

// LogEntry is a transaction log with its AI error summary.
type LogEntry struct {
	ID           uint         `json:"id"`
	UserID       *string      `json:"userId"`
	Email        *string      `json:"email"`
	Endpoint     string       `json:"endpoint"`
	HTTPMethod   string       `json:"httpMethod"`
	StatusCode   int          `json:"statusCode"`
	ErrorMessage *string      `json:"errorMessage"`
	CreatedAt    time.Time    `json:"createdAt"`
	AISummary    *string      `json:"aiSummary"`
	User         *LogUserView `json:"User"`
}

type LogUserView struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
}

type LogFilter struct {
	UserID string
	Email  string
}

// TransactionLogs records and lists API request logs.
type TransactionLogs struct {
	DB  *gorm.DB
	AI  ai.Assistant
	Log *slog.Logger
}

func NewTransactionLogs(db *gorm.DB, assistant ai.Assistant, log *slog.Logger) *TransactionLogs {
	if assistant == nil {
		assistant = ai.Unavailable{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &TransactionLogs{DB: db, AI: assistant, Log: log}
}

func (t *TransactionLogs) Record(ctx context.Context, entry *models.TransactionLog) error {
	if err := t.DB.WithContext(ctx).Omit("User").Create(entry).Error; err != nil {
		return fmt.Errorf("record transaction log: %w", err)
	}
	return nil
}

// List returns the newest logs matching f, each failed call enriched with an
// AI summary of its error message.
func (t *TransactionLogs) List(ctx context.Context, f LogFilter) ([]LogEntry, error) {
	q := t.DB.WithContext(ctx).Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "first_name", "email")
	})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if e := strings.TrimSpace(f.Email); e != "" {
		q = q.Where("email LIKE ?", "%"+e+"%")
	}

	var logs []models.TransactionLog
	if err := q.Order("created_at DESC, id DESC").Limit(logListLimit).Find(&logs).Error; err != nil {
		return nil, err
	}

	out := make([]LogEntry, len(logs))
	var wg sync.WaitGroup
	for i := range logs {
		l := logs[i]
		out[i] = LogEntry{
			ID:           l.ID,
			UserID:       l.UserID,
			Email:        l.Email,
			Endpoint:     l.Endpoint,
			HTTPMethod:   l.HTTPMethod,
			StatusCode:   l.StatusCode,
			ErrorMessage: l.ErrorMessage,
			CreatedAt:    l.CreatedAt,
		}
		if l.User != nil {
			out[i].User = &LogUserView{ID: l.User.ID, FirstName: l.User.FirstName, Email: l.User.Email}
		}
		if l.ErrorMessage == nil || *l.ErrorMessage == "" {
			continue
		}
		wg.Add(1)
		go func(i int, msg string) {
			defer wg.Done()
			summary, err := t.AI.SummarizeError(ctx, msg)
			if err != nil {
				t.Log.Warn("log summary generation failed", slog.Uint64("log_id", uint64(out[i].ID)), slog.String("error", err.Error()))
				summary = "AI summary failed: " + err.Error()
			}
			out[i].AISummary = &summary
		}(i, *l.ErrorMessage)
	}
	wg.Wait()
	return out, nil
}
