package service

import (
	"go.uber.org/zap"

	"github.com/Kike1196/beyco-sdadd-sub000/internal/dto"
	"github.com/Kike1196/beyco-sdadd-sub000/internal/grading"
)

// notificationBuffer collects session notifications until the response is written.
// It logs each one as it arrives.
type notificationBuffer struct {
	logger *zap.Logger
	items  []dto.NotificationResponse
}

func newNotificationBuffer(logger *zap.Logger) *notificationBuffer {
	return &notificationBuffer{logger: logger}
}

func (b *notificationBuffer) Notify(message string, severity grading.Severity) {
	switch severity {
	case grading.SeverityError:
		b.logger.Error("grading notification", zap.String("message", message))
	case grading.SeverityWarning:
		b.logger.Warn("grading notification", zap.String("message", message))
	default:
		b.logger.Debug("grading notification", zap.String("message", message), zap.String("severity", string(severity)))
	}
	b.items = append(b.items, dto.NotificationResponse{Message: message, Severity: string(severity)})
}

// drain returns and clears the buffered notifications. Never nil.
func (b *notificationBuffer) drain() []dto.NotificationResponse {
	out := b.items
	if out == nil {
		out = []dto.NotificationResponse{}
	}
	b.items = nil
	return out
}
