package notifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/NordCoder/Uptimer/internal/domain/notification"
	"github.com/NordCoder/Uptimer/internal/obs"
)

var _ notification.Sender = (*LogSender)(nil)

// LogSender writes alerts to the service log instead of delivering them.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.With(zap.String("component", "notifier.log"))}
}

func (s *LogSender) Send(ctx context.Context, recipient, message string) error {
	obs.WithTrace(ctx, s.log).Info("alert",
		zap.String("recipient", recipient),
		zap.String("message", message),
	)
	return nil
}
