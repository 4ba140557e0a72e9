package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/token-auth-service/pkg/util/errorutil"
)

// DecisionListener observes every decision made by the filter.
type DecisionListener func(ctx context.Context, d Decision)

// FilterConfig bundles TokenFilter collaborators.
type FilterConfig struct {
	Engine    *Engine
	Reject    RejectionHandler
	Logger    *zap.Logger
	Listeners []DecisionListener
}

// TokenFilter runs the decision engine for a request and applies its result.
// It may be mounted more than once in one pipeline; each pass reads the
// security context left by the previous one.
type TokenFilter struct {
	engine    *Engine
	reject    RejectionHandler
	logger    *zap.Logger
	listeners []DecisionListener
}

// NewTokenFilter constructs the filter.
func NewTokenFilter(cfg FilterConfig) *TokenFilter {
	if cfg.Reject == nil {
		cfg.Reject = DefaultRejectionHandler
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &TokenFilter{
		engine:    cfg.Engine,
		reject:    cfg.Reject,
		logger:    cfg.Logger,
		listeners: cfg.Listeners,
	}
}

// Handle is the fiber middleware.
func (f *TokenFilter) Handle(c *fiber.Ctx) error {
	decision, err := f.engine.Decide(SecurityContextFrom(c), c.Get(HeaderAuthToken))
	if err != nil {
		f.logger.Error("token filter failed", zap.String("path", c.Path()), zap.Error(err))
		return apperrors.NewInternalError(err)
	}

	for _, listener := range f.listeners {
		listener(c.UserContext(), decision)
	}

	if !decision.Continue() {
		f.logger.Debug("token rejected", zap.String("path", c.Path()), zap.Error(decision.Reason))
		ClearIdentity(c)
		return f.reject(c, decision.Reason)
	}

	if decision.State == StateTokenIssued {
		c.Set(HeaderAuthToken, decision.IssuedToken)
		f.logger.Debug("token issued", zap.String("user", decision.Context.Identity.Principal.Username))
	}

	SetSecurityContext(c, decision.Context)
	return c.Next()
}
