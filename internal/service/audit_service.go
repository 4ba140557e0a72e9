package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/token-auth-service/internal/auth"
	"github.com/spec-kit/token-auth-service/internal/events"
	"github.com/spec-kit/token-auth-service/internal/observability"
)

// AuditService turns authentication decisions into audit events and records them.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger, metrics: metrics}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventTokenIssued,
		events.EventTokenRejected,
		events.EventLoginSucceeded,
		events.EventLoginFailed,
	} {
		a.dispatcher.Subscribe(eventType, a.handleEvent)
	}
}

// ObserveDecision is an auth.DecisionListener.
func (a *AuditService) ObserveDecision(ctx context.Context, d auth.Decision) {
	a.metrics.RecordAuthOutcome(d.State.String())

	switch d.State {
	case auth.StateTokenIssued:
		principal := d.Context.Identity.Principal
		role := ""
		if len(principal.Roles) > 0 {
			role = principal.Roles[0]
		}
		a.publish(ctx, events.NewEvent(events.EventTokenIssued, principal.Username, events.TokenIssuedPayload{
			Role:       role,
			TTLMinutes: auth.DefaultTokenTTLMinutes,
		}))
	case auth.StateTokenPresentRejected:
		a.publish(ctx, events.NewEvent(events.EventTokenRejected, "", events.TokenRejectedPayload{Reason: "invalid_token"}))
	}
}

func (a *AuditService) handleEvent(_ context.Context, event events.Event) error {
	a.metrics.RecordAuthOutcome("event:" + string(event.Type))
	a.logger.Info("auth event",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("subject", event.Subject),
		zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) publish(ctx context.Context, event events.Event) {
	if a.dispatcher == nil {
		return
	}
	if err := a.dispatcher.Publish(ctx, event); err != nil {
		a.logger.Warn("audit publish failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}
