package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// WebhookNotifier posts each reminder to an external endpoint, for
// deployments where another service owns the presentation surface.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

type webhookRequest struct {
	RequestID int    `json:"requestId"`
	Title     string `json:"title"`
	Text      string `json:"text"`
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (n *WebhookNotifier) ShowReminder(ctx context.Context, requestID int, title, text string) error {
	body, err := json.Marshal(webhookRequest{
		RequestID: requestID,
		Title:     title,
		Text:      text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		slog.Warn("failed to deliver reminder webhook",
			slog.Int("request_id", requestID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		slog.Warn("unexpected status code from reminder webhook",
			slog.Int("request_id", requestID),
			slog.Int("status_code", resp.StatusCode),
		)
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}
