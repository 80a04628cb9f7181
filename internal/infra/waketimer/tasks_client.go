//go:build !gcloud

package waketimer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"
)

// TasksClient schedules wake-ups through a Cloud Tasks compatible HTTP
// service. Each armed action maps to a named task so re-arming and
// cancellation can address it by request id.
type TasksClient struct {
	baseURL    string
	queueName  string
	httpClient *http.Client
	maxRetries int
}

type tasksHTTPRequest struct {
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers,omitempty"`
}

type tasksTask struct {
	Name         string           `json:"name,omitempty"`
	ScheduleTime string           `json:"scheduleTime,omitempty"`
	HTTPRequest  tasksHTTPRequest `json:"httpRequest"`
}

type tasksCreateRequest struct {
	Task tasksTask `json:"task"`
}

type tasksResponse struct {
	Name         string `json:"name"`
	ScheduleTime string `json:"scheduleTime"`
	CreateTime   string `json:"createTime"`
}

func NewTasksClient(baseURL, queueName string, maxRetries int) *TasksClient {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &TasksClient{
		baseURL:   baseURL,
		queueName: queueName,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: maxRetries,
	}
}

func (c *TasksClient) Arm(ctx context.Context, requestID int, at time.Time, payload *FirePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal fire payload: %w", err)
	}

	req := tasksCreateRequest{
		Task: tasksTask{
			Name:         taskName(requestID),
			ScheduleTime: at.Format(time.RFC3339),
			HTTPRequest: tasksHTTPRequest{
				Body: base64.StdEncoding.EncodeToString(body),
				Headers: map[string]string{
					"Content-Type": "application/json",
				},
			},
		},
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal task request: %w", err)
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

		err := c.createTask(ctx, reqBody, requestID)
		if err == nil {
			return nil
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

func (c *TasksClient) createTask(ctx context.Context, reqBody []byte, requestID int) error {
	url := c.tasksURL()
	slog.Debug("arming wake timer via tasks service",
		slog.String("url", url),
		slog.Int("request_id", requestID),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("failed to send request to tasks service",
			slog.Int("request_id", requestID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return ErrArmDenied
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		slog.Warn("unexpected status code from tasks service",
			slog.Int("request_id", requestID),
			slog.Int("status_code", resp.StatusCode),
		)
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var taskResp tasksResponse
	if err := json.NewDecoder(resp.Body).Decode(&taskResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	slog.Info("wake timer armed",
		slog.String("task_name", taskResp.Name),
		slog.Int("request_id", requestID),
		slog.String("schedule_time", taskResp.ScheduleTime),
	)
	return nil
}

func (c *TasksClient) Cancel(ctx context.Context, requestID int) error {
	url := c.taskURL(requestID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		slog.Debug("task not found on cancel (may have fired already)",
			slog.Int("request_id", requestID),
		)
		return nil
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	slog.Info("wake timer cancelled", slog.Int("request_id", requestID))
	return nil
}

func (c *TasksClient) IsArmed(ctx context.Context, requestID int) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.taskURL(requestID), nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}

func (c *TasksClient) tasksURL() string {
	if c.queueName != "" && c.queueName != "default" {
		return fmt.Sprintf("%s/tasks/%s", c.baseURL, c.queueName)
	}
	return fmt.Sprintf("%s/tasks", c.baseURL)
}

func (c *TasksClient) taskURL(requestID int) string {
	return fmt.Sprintf("%s/task/%s", c.baseURL, taskName(requestID))
}
