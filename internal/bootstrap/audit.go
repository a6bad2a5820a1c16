package bootstrap

import (
	"context"
	"time"

	"go-hris-iam/internal/shared/contextutil"

	"go.uber.org/zap"
)

// AuditLog is a single operational event worth keeping apart from the
// request logs, such as a server start or shutdown.
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}

// ZapAuditLogger writes audit entries to a dedicated "audit" logger, tagged
// with whatever request identity ctx carries.
type ZapAuditLogger struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewZapAuditLogger(logger *zap.Logger) *ZapAuditLogger {
	if logger == nil {
		logger = zap.L()
	}
	return &ZapAuditLogger{logger: logger.Named("audit"), now: time.Now}
}

func (l *ZapAuditLogger) Log(ctx context.Context, entry AuditLog) {
	fields := append(contextutil.ExtractMetadata(ctx).Fields(),
		zap.Time("at", l.now().UTC()),
		zap.String("action", entry.Action),
		zap.Any("meta", entry.Meta),
	)
	l.logger.Info(entry.Message, fields...)
}
