package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/storefront/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeWelcomeEmail greets a freshly registered account.
	TaskTypeWelcomeEmail = "user:welcome"
)

// WelcomeEmailPayload identifies the account to greet.
type WelcomeEmailPayload struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
}

// NewWelcomeEmailTask constructs an Asynq task.
func NewWelcomeEmailTask(payload WelcomeEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeWelcomeEmail, data, asynq.MaxRetry(5)), nil
}

// WelcomeEmailJob renders and sends the welcome email.
type WelcomeEmailJob struct {
	mailer  Mailer
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewWelcomeEmailJob constructs the job handler.
func NewWelcomeEmailJob(mailer Mailer, logger *slog.Logger, metrics *jobmetrics.Metrics) *WelcomeEmailJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &WelcomeEmailJob{mailer: mailer, logger: logger, metrics: metrics}
}

// Handle processes TaskTypeWelcomeEmail tasks.
func (j *WelcomeEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track(TaskTypeWelcomeEmail)

	var payload WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		j.logger.Warn("welcome email: bad payload", slog.Any("error", err))
		return tracker.End(fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry))
	}
	if payload.Email == "" {
		return tracker.End(fmt.Errorf("welcome email: empty recipient: %w", asynq.SkipRetry))
	}

	msg := Message{
		To:      payload.Email,
		Subject: "Welcome to the store",
		Body:    fmt.Sprintf("Hi %s,\n\nYour account is ready. Sign in any time to manage your products.\n", payload.Name),
	}
	if err := j.mailer.Send(ctx, msg); err != nil {
		return tracker.End(fmt.Errorf("welcome email: send: %w", err))
	}
	j.logger.Info("welcome email sent", slog.String("user_id", payload.UserID.String()))
	return tracker.End(nil)
}
