package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/token-auth-service/internal/auth"
	"github.com/spec-kit/token-auth-service/internal/events"
	"github.com/spec-kit/token-auth-service/internal/observability"
)

func TestAuditService_ObserveDecision(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	audit := NewAuditService(dispatcher, zapNop(), metrics)
	audit.RegisterHandlers()

	recorded := &recordedEvents{}
	recorded.subscribeAll(dispatcher)

	ctx := context.Background()
	issued := auth.SecurityContext{Identity: auth.CredentialsIdentity("admin", []string{"ADMIN"}), TokenIssued: true}
	audit.ObserveDecision(ctx, auth.Decision{State: auth.StateTokenIssued, Context: issued, IssuedToken: "secret-token"})
	audit.ObserveDecision(ctx, auth.Decision{State: auth.StateTokenPresentRejected})
	audit.ObserveDecision(ctx, auth.Decision{State: auth.StateNoToken})

	assert.Equal(t, []events.EventType{events.EventTokenIssued, events.EventTokenRejected}, recorded.types())
	for _, e := range recorded.events {
		assert.NotContains(t, e.Subject, "secret-token")
		assert.NotEqual(t, "secret-token", e.Payload)
	}
	assert.Equal(t, events.TokenIssuedPayload{Role: "ADMIN", TTLMinutes: auth.DefaultTokenTTLMinutes}, recorded.events[0].Payload)

	snap := metrics.Snapshot()
	assert.Equal(t, int64(1), snap.AuthOutcomes["token_issued"])
	assert.Equal(t, int64(1), snap.AuthOutcomes["token_rejected"])
	assert.Equal(t, int64(1), snap.AuthOutcomes["no_token"])
	assert.Equal(t, int64(1), snap.AuthOutcomes["event:token_issued"])
	assert.Equal(t, int64(1), snap.AuthOutcomes["event:token_rejected"])
}
