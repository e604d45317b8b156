// Package jobs runs background work through Asynq. The only task today is
// the account purge cascade, used when an operator prefers not to wait for
// a large deletion inline.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/menuforge/menuforge/internal/cascade"
	"github.com/menuforge/menuforge/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAccountPurge runs the account deletion cascade.
	TaskTypeAccountPurge = "account:purge"
)

// AccountPurgePayload identifies the account to remove.
type AccountPurgePayload struct {
	ProfileID uuid.UUID `json:"profile_id"`
}

// NewAccountPurgeTask constructs an Asynq task.
func NewAccountPurgeTask(payload AccountPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAccountPurge, data), nil
}

// NewAccountPurgeHandler processes TaskTypeAccountPurge tasks. A profile
// already removed by an earlier attempt skips retry; the cascade has nothing
// left to do.
func NewAccountPurgeHandler(logger *slog.Logger, orchestrator *cascade.Orchestrator) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload AccountPurgePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("account purge payload: %v: %w", err, asynq.SkipRetry)
		}

		report, err := orchestrator.PurgeAccount(ctx, payload.ProfileID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				logger.Info("account already purged",
					slog.String("profile_id", payload.ProfileID.String()))
				return nil
			}
			return err
		}

		logger.Info("background account purge complete",
			slog.String("profile_id", payload.ProfileID.String()),
			slog.Int("businesses_purged", report.BusinessesPurged),
			slog.Int("soft_failures", len(report.SoftFailures)))
		return nil
	}
}
