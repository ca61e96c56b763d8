package notify

import (
	"context"
	"log"
	"time"
)

// Notification is the payload handed to the outbound transport: which
// attempt needs review, when it happened, and the captured still (if any).
type Notification struct {
	AttemptID int64
	Timestamp time.Time
	ImagePath string // empty when no still was captured
}

// Notifier delivers a security notification.  Implementations own the
// transport mechanics; the dispatcher only sees success or failure.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the server log instead of sending
// them.  Used in dev when SMTP is not configured, so the dispatch path
// stays exercised end to end.
type LogNotifier struct {
	Logger *log.Logger
}

func (l LogNotifier) Send(_ context.Context, n Notification) error {
	l.Logger.Printf("security alert (smtp not configured): attempt=%d at=%s image=%q",
		n.AttemptID, n.Timestamp.Format(time.RFC3339), n.ImagePath)
	return nil
}
