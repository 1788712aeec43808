// Package notify delivers one-time codes to accounts out-of-band. The auth
// state machine treats delivery as best-effort: a failed send is logged but
// never rolls back the persisted code.
package notify

import (
	"context"
	"log/slog"
)

// Notifier sends a one-time code to a destination address.
type Notifier interface {
	Send(ctx context.Context, destination, code string) error
}

// LogNotifier writes the code to the service log instead of delivering it.
// It stands in for SMTP in development and tests.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) Send(ctx context.Context, destination, code string) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("otp issued (log notifier)", "destination", destination, "code", code)
	return nil
}
