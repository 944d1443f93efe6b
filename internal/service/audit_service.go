package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/status-page/internal/events"
	"github.com/spec-kit/status-page/internal/observability"
)

// AuditService records authentication events in the log and the outcome
// counters.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to every auth event type.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(a.handle, events.AuthEventTypes...)
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	a.metrics.RecordAuthOutcome(string(event.Type))

	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event", string(event.Type)),
		zap.Time("at", event.Timestamp),
	}
	if event.Actor.SubjectID != "" {
		fields = append(fields,
			zap.String("subject_id", event.Actor.SubjectID),
			zap.String("kind", string(event.Actor.Kind)))
	}
	if event.Actor.OrganizationID != "" {
		fields = append(fields, zap.String("organization_id", event.Actor.OrganizationID))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}

	if event.Type == events.EventSignInFailed {
		a.logger.Warn("auth event", fields...)
		return nil
	}
	a.logger.Info("auth event", fields...)
	return nil
}
