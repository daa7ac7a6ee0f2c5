package notifier

import (
	"context"
	"log/slog"

	"github.com/srgjo27/meeting_room/internal/core/ports"
)

// LogNotifier writes notifications to the log instead of delivering them.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Send(_ context.Context, n ports.Notification) error {
	l.log.Info("notification",
		slog.String("to", n.To),
		slog.String("subject", n.Subject),
		slog.String("body", n.Body),
		slog.String("key", n.Key),
	)

	return nil
}
