package backoffice

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aquamarinepk/aqm"
)

// AuditEntry represents a single audit log entry for a user action.
type AuditEntry struct {
	UserID    string          `json:"user_id"`
	Action    string          `json:"action"`
	Target    string          `json:"target"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Success   bool            `json:"success"`
	Error     string          `json:"error,omitempty"`
}

// AuditLogger records workflow mutations.
type AuditLogger struct {
	logger aqm.Logger
}

func NewAuditLogger(logger aqm.Logger) *AuditLogger {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &AuditLogger{logger: logger}
}

func (a *AuditLogger) Log(ctx context.Context, entry AuditEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	a.logger.Info("audit",
		"request_id", aqm.RequestIDFrom(ctx),
		"user_id", entry.UserID,
		"action", entry.Action,
		"target", entry.Target,
		"payload", string(entry.Payload),
		"success", entry.Success,
		"timestamp", entry.Timestamp.Format(time.RFC3339),
		"error", entry.Error,
	)
}

// Record logs the outcome of an action performed by the session's user.
func (a *AuditLogger) Record(ctx context.Context, action, target string, payload any, err error) {
	entry := AuditEntry{
		Action:    action,
		Target:    target,
		Timestamp: time.Now(),
		Success:   err == nil,
	}
	if s := sessionFrom(ctx); s != nil {
		entry.UserID = s.UserID
	}
	if payload != nil {
		entry.Payload, _ = json.Marshal(payload)
	}
	if err != nil {
		entry.Error = err.Error()
	}
	a.Log(ctx, entry)
}

func (a *AuditLogger) LogLogin(ctx context.Context, userID string) {
	a.Log(ctx, AuditEntry{UserID: userID, Action: "login", Target: "auth", Success: true})
}

func (a *AuditLogger) LogLogout(ctx context.Context, userID string) {
	a.Log(ctx, AuditEntry{UserID: userID, Action: "logout", Target: "auth", Success: true})
}
