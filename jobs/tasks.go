package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/vendora/vendora/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAuthzDenied is the task type for auditing rejected
	// authorization attempts.
	TaskTypeAuthzDenied = "authz:denied"
	// TaskTypeSessionCleanup purges expired session rows.
	TaskTypeSessionCleanup = "sessions:cleanup"
)

// AuthzDeniedPayload describes one rejected authorization attempt.
type AuthzDeniedPayload struct {
	UserID    string `json:"user_id"`
	Operation string `json:"operation"`
	Path      string `json:"path"`
	Reason    string `json:"reason"`
}

// NewAuthzDeniedTask constructs an Asynq task.
func NewAuthzDeniedTask(payload AuthzDeniedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuthzDenied, data), nil
}

// SessionCleaner removes expired session records, reporting how many
// rows were purged.
type SessionCleaner interface {
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// NewSessionCleanupTask constructs the periodic cleanup task. It
// carries no payload.
func NewSessionCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSessionCleanup, nil)
}

// NewSessionCleanupHandler processes TaskTypeSessionCleanup tasks.
func NewSessionCleanupHandler(cleaner SessionCleaner, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		purged, err := cleaner.DeleteExpiredSessions(ctx)
		if err != nil {
			return err
		}
		if purged > 0 && logger != nil {
			logger.Info("expired sessions purged", slog.Int64("count", purged))
		}
		return nil
	}
}

// NewAuthzDeniedHandler processes TaskTypeAuthzDenied tasks by writing
// an audit trail record.
func NewAuthzDeniedHandler(audit *shared.AuditLogger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload AuthzDeniedPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		return audit.Record(ctx, shared.AuditLog{
			ActorID: payload.UserID,
			Action:  "authz.denied",
			Entity:  payload.Operation,
			Meta: map[string]any{
				"path":   payload.Path,
				"reason": payload.Reason,
			},
		})
	}
}
