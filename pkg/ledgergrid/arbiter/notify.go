package arbiter

import (
	"context"

	"go.uber.org/zap"
)

// Notifier shows a short message to the user who made the edit.
type Notifier interface {
	Notify(ctx context.Context, title, message string)
}

// LogNotifier writes notifications to a logger at warn level.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Notify(_ context.Context, title, message string) {
	if n.Logger == nil {
		return
	}
	n.Logger.Warn(message, zap.String("title", title))
}
