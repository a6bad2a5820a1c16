package notification

import (
	"context"

	"go-hris-iam/internal/shared/contextutil"

	"go.uber.org/zap"
)

// LogSender only records that a message would have been sent. Bodies are
// never logged since they can carry credentials.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger ...*zap.Logger) *LogSender {
	l := zap.L().Named("notification.log")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.log")
	}
	return &LogSender{logger: l}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	contextutil.GetLogger(ctx, s.logger).Info("email dispatched",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
