package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/token-auth-service/internal/auth"
	"github.com/spec-kit/token-auth-service/internal/config"
	"github.com/spec-kit/token-auth-service/internal/domain"
	"github.com/spec-kit/token-auth-service/internal/events"
	"github.com/spec-kit/token-auth-service/internal/repository"
	apperrors "github.com/spec-kit/token-auth-service/pkg/util/errorutil"
)

var (
	// ErrInvalidCredentials covers unknown users and wrong passwords alike.
	ErrInvalidCredentials = apperrors.NewDomainError("INVALID_CREDENTIALS", "invalid username or password", http.StatusUnauthorized, nil)
	// ErrTooManyAttempts is returned while the limiter blocks a username.
	ErrTooManyAttempts    = apperrors.NewDomainError("TOO_MANY_REQUESTS", "too many failed login attempts", http.StatusTooManyRequests, nil)
)

// LoginResult is returned by an explicit login.
type LoginResult struct {
	Identity  auth.Identity
	Token     string
	ExpiresAt time.Time
}

// LoginDependencies encapsulates collaborators for the login service.
type LoginDependencies struct {
	Users      repository.UserRepository
	Limiter    LoginLimiter
	Issuer     auth.ExpiringIssuer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	BcryptCost int
}

// LoginService validates primary credentials. It is the identity source for
// the token filter.
type LoginService struct {
	users      repository.UserRepository
	limiter    LoginLimiter
	issuer     auth.ExpiringIssuer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	dummyHash  string
}

// NewLoginService builds the service.
func NewLoginService(deps LoginDependencies) (*LoginService, error) {
	if deps.Limiter == nil {
		deps.Limiter = NoopLoginLimiter{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	// compared against when the user does not exist, so both paths cost one bcrypt check
	dummy, err := auth.HashPassword("not-a-real-password", deps.BcryptCost)
	if err != nil {
		return nil, err
	}
	return &LoginService{
		users:      deps.Users,
		limiter:    deps.Limiter,
		issuer:     deps.Issuer,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		dummyHash:  dummy,
	}, nil
}

// Authenticate checks username and password and returns a credentials identity
// carrying every granted role.
func (s *LoginService) Authenticate(ctx context.Context, username, password string) (auth.Identity, error) {
	allowed, err := s.limiter.Allow(ctx, username)
	if err != nil {
		s.logger.Warn("login limiter unavailable", zap.Error(err))
	}
	if !allowed {
		s.publish(ctx, events.NewEvent(events.EventLoginFailed, username, events.LoginFailedPayload{Reason: "throttled"}))
		return auth.NoIdentity(), ErrTooManyAttempts
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = auth.ComparePassword(s.dummyHash, password)
			return auth.NoIdentity(), s.fail(ctx, username, "unknown_user")
		}
		return auth.NoIdentity(), apperrors.NewInternalError(err)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return auth.NoIdentity(), s.fail(ctx, username, "bad_password")
	}
	if len(user.Roles) == 0 {
		return auth.NoIdentity(), apperrors.NewInternalError(auth.ErrIncompleteIdentity)
	}

	if err := s.limiter.Reset(ctx, username); err != nil {
		s.logger.Warn("login limiter reset failed", zap.Error(err))
	}
	s.publish(ctx, events.NewEvent(events.EventLoginSucceeded, username, nil))
	return auth.CredentialsIdentity(user.Username, user.Roles), nil
}

// Login authenticates and mints a token directly.
func (s *LoginService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	identity, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	claims, err := auth.ToClaims(identity)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	token, expiresAt, err := s.issuer.IssueWithExpiry(claims, auth.DefaultTokenTTLMinutes)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.NewEvent(events.EventTokenIssued, identity.Principal.Username, events.TokenIssuedPayload{
		Role:       identity.Principal.Roles[0],
		TTLMinutes: auth.DefaultTokenTTLMinutes,
	}))
	return &LoginResult{
		Identity:  identity,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *LoginService) fail(ctx context.Context, username, reason string) error {
	if err := s.limiter.RecordFailure(ctx, username); err != nil {
		s.logger.Warn("login limiter record failed", zap.Error(err))
	}
	s.publish(ctx, events.NewEvent(events.EventLoginFailed, username, events.LoginFailedPayload{Reason: reason}))
	return ErrInvalidCredentials
}

func (s *LoginService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("audit publish failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}

// SeedUsers hashes and stores the configured accounts.
func SeedUsers(ctx context.Context, users repository.UserRepository, seeds []config.SeedUser, cost int, logger *zap.Logger) error {
	for _, seed := range seeds {
		hash, err := auth.HashPassword(seed.Password, cost)
		if err != nil {
			return err
		}
		user := &domain.User{
			Username:     seed.Username,
			PasswordHash: hash,
			Roles:        append([]string(nil), seed.Roles...),
		}
		if err := users.Upsert(ctx, user); err != nil {
			return err
		}
		logger.Info("seeded user", zap.String("username", seed.Username), zap.Strings("roles", seed.Roles))
	}
	return nil
}
