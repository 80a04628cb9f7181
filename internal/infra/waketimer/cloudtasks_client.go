//go:build gcloud

package waketimer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	taskspb "cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// CloudTasksTimer schedules wake-ups as named Cloud Tasks. The task name
// is derived from the request id so arming is idempotent per action.
type CloudTasksTimer struct {
	client     *cloudtasks.Client
	projectID  string
	locationID string
	queueID    string
	targetURL  string
	maxRetries int
}

type CloudTasksConfig struct {
	ProjectID  string
	LocationID string
	QueueID    string
	TargetURL  string
	MaxRetries int
}

func NewCloudTasksTimer(ctx context.Context, cfg CloudTasksConfig) (*CloudTasksTimer, error) {
	client, err := cloudtasks.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud tasks client: %w", err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &CloudTasksTimer{
		client:     client,
		projectID:  cfg.ProjectID,
		locationID: cfg.LocationID,
		queueID:    cfg.QueueID,
		targetURL:  cfg.TargetURL,
		maxRetries: maxRetries,
	}, nil
}

func (c *CloudTasksTimer) Arm(ctx context.Context, requestID int, at time.Time, payload *FirePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal fire payload: %w", err)
	}

	req := &taskspb.CreateTaskRequest{
		Parent: c.queuePath(),
		Task: &taskspb.Task{
			Name:         c.taskPath(requestID),
			ScheduleTime: timestamppb.New(at),
			MessageType: &taskspb.Task_HttpRequest{
				HttpRequest: &taskspb.HttpRequest{
					HttpMethod: taskspb.HttpMethod_POST,
					Url:        c.targetURL,
					Headers: map[string]string{
						"Content-Type": "application/json",
					},
					Body: body,
				},
			},
		},
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * 100 * time.Millisecond
			slog.Debug("retrying timer arming",
				slog.Int("request_id", requestID),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := c.createTask(ctx, req, requestID)
		if err == nil {
			return nil
		}
		if err == ErrArmDenied {
			return err
		}
		lastErr = err
	}

	slog.Error("all retries exhausted for timer arming",
		slog.Int("request_id", requestID),
		slog.Int("max_retries", c.maxRetries),
		slog.String("error", lastErr.Error()),
	)
	return fmt.Errorf("failed to arm timer after %d retries: %w", c.maxRetries, lastErr)
}

func (c *CloudTasksTimer) createTask(ctx context.Context, req *taskspb.CreateTaskRequest, requestID int) error {
	createdTask, err := c.client.CreateTask(ctx, req)
	if err != nil {
		switch status.Code(err) {
		case codes.PermissionDenied:
			slog.Warn("cloud tasks refused to schedule the timer",
				slog.Int("request_id", requestID),
				slog.String("error", err.Error()),
			)
			return ErrArmDenied
		case codes.AlreadyExists:
			// Re-arming replaces the previous occurrence.
			if err := c.deleteTask(ctx, req.Task.Name, requestID); err != nil {
				return err
			}
			createdTask, err = c.client.CreateTask(ctx, req)
			if err != nil {
				return fmt.Errorf("failed to recreate cloud task: %w", err)
			}
		default:
			slog.Warn("failed to create cloud task",
				slog.Int("request_id", requestID),
				slog.String("error", err.Error()),
			)
			return fmt.Errorf("failed to create cloud task: %w", err)
		}
	}

	slog.Info("wake timer armed",
		slog.String("task_name", createdTask.Name),
		slog.Int("request_id", requestID),
	)
	return nil
}

func (c *CloudTasksTimer) Cancel(ctx context.Context, requestID int) error {
	return c.deleteTask(ctx, c.taskPath(requestID), requestID)
}

func (c *CloudTasksTimer) deleteTask(ctx context.Context, taskPath string, requestID int) error {
	err := c.client.DeleteTask(ctx, &taskspb.DeleteTaskRequest{Name: taskPath})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			slog.Debug("task not found in cloud tasks (may have fired already)",
				slog.Int("request_id", requestID),
			)
			return nil
		}
		slog.Warn("failed to delete cloud task",
			slog.Int("request_id", requestID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to delete cloud task: %w", err)
	}

	slog.Info("wake timer cancelled", slog.Int("request_id", requestID))
	return nil
}

func (c *CloudTasksTimer) IsArmed(ctx context.Context, requestID int) (bool, error) {
	_, err := c.client.GetTask(ctx, &taskspb.GetTaskRequest{Name: c.taskPath(requestID)})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cloud task: %w", err)
	}
	return true, nil
}

func (c *CloudTasksTimer) Close() error {
	return c.client.Close()
}

func (c *CloudTasksTimer) queuePath() string {
	return fmt.Sprintf("projects/%s/locations/%s/queues/%s",
		c.projectID, c.locationID, c.queueID)
}

func (c *CloudTasksTimer) taskPath(requestID int) string {
	return fmt.Sprintf("%s/tasks/%s", c.queuePath(), taskName(requestID))
}
