package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes reminders to the structured log. It is the default
// sink for local deployments without a presentation channel.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) ShowReminder(ctx context.Context, requestID int, title, text string) error {
	slog.Info("reminder",
		slog.Int("request_id", requestID),
		slog.String("title", title),
		slog.String("text", text),
	)
	return nil
}
