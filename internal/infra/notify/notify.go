package notify

import "context"

//go:generate mockgen -source=notify.go -destination=notify_mock.go -package=notify

// Notifier surfaces a reminder to the user when its action fires.
type Notifier interface {
	ShowReminder(ctx context.Context, requestID int, title, text string) error
}
