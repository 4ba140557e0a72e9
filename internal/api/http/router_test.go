package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/token-auth-service/internal/api/http/handlers"
	"github.com/spec-kit/token-auth-service/internal/auth"
	"github.com/spec-kit/token-auth-service/internal/config"
	"github.com/spec-kit/token-auth-service/internal/events"
	"github.com/spec-kit/token-auth-service/internal/observability"
	"github.com/spec-kit/token-auth-service/internal/persistence"
	"github.com/spec-kit/token-auth-service/internal/repository"
	"github.com/spec-kit/token-auth-service/internal/service"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type testServer struct {
	app     *fiber.App
	codec   *auth.TokenCodec
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	ctx := context.Background()

	users := repository.NewMemoryUserRepository()
	require.NoError(t, service.SeedUsers(ctx, users, []config.SeedUser{
		{Username: "user", Password: "111", Roles: []string{"USER"}},
		{Username: "admin", Password: "111", Roles: []string{"ADMIN", "USER"}},
	}, bcrypt.MinCost, logger))

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	audit := service.NewAuditService(dispatcher, logger, metrics)
	audit.RegisterHandlers()

	codec := auth.NewTokenCodec(testSecret)
	logins, err := service.NewLoginService(service.LoginDependencies{
		Users:      users,
		Issuer:     codec,
		Dispatcher: dispatcher,
		Logger:     logger,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)

	filter := auth.NewTokenFilter(auth.FilterConfig{
		Engine:    auth.NewEngine(codec, codec),
		Logger:    logger,
		Listeners: []auth.DecisionListener{audit.ObserveDecision},
	})

	pg, err := persistence.NewPostgres(ctx, config.PostgresConfig{}, logger)
	require.NoError(t, err)

	app := NewApp(ServerConfig{Name: "test", Logger: logger, Metrics: metrics}, RouteConfig{
		Health:        handlers.NewHealthHandler("test", "v0", pg, persistence.NewRedis(config.RedisConfig{}, logger), metrics),
		Login:         handlers.NewLoginHandler(logins),
		API:           handlers.NewAPIHandler(),
		TokenFilter:   filter,
		Authenticator: logins,
		Reject:        auth.DefaultRejectionHandler,
	})
	return &testServer{app: app, codec: codec, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path string, body string, headers map[string]string) (*nethttp.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func basicHeader(user, pass string) map[string]string {
	return map[string]string{
		fiber.HeaderAuthorization: "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass)),
	}
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestRoutes_BasicLoginThenToken(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, nethttp.MethodGet, "/api/me", "", basicHeader("admin", "111"))
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	token := resp.Header.Get(auth.HeaderAuthToken)
	require.NotEmpty(t, token)
	assert.Len(t, resp.Header.Values(auth.HeaderAuthToken), 1)
	data := body["data"].(map[string]any)
	assert.Equal(t, "admin", data["username"])
	assert.Equal(t, "credentials", data["kind"])

	resp, body = s.do(t, nethttp.MethodGet, "/api/admin/ping", "", map[string]string{auth.HeaderAuthToken: token})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(auth.HeaderAuthToken))
	caller := body["data"].(map[string]any)["caller"].(map[string]any)
	assert.Equal(t, "token", caller["kind"])
	assert.Equal(t, []any{"ADMIN"}, caller["roles"])

	outcomes := s.metrics.Snapshot().AuthOutcomes
	assert.Equal(t, int64(1), outcomes["token_issued"])
	assert.Equal(t, int64(1), outcomes["token_validated"])
	assert.Equal(t, int64(1), outcomes["already_authenticated"])
}

func TestRoutes_GarbageToken(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, nethttp.MethodGet, "/api/public/ping", "", map[string]string{auth.HeaderAuthToken: "garbage"})

	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))
	assert.Empty(t, resp.Header.Get(auth.HeaderAuthToken))
	assert.Equal(t, int64(1), s.metrics.Snapshot().AuthOutcomes["event:token_rejected"])
}

func TestRoutes_AnonymousAndForbidden(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, nethttp.MethodGet, "/api/public/ping", "", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	caller := body["data"].(map[string]any)["caller"].(map[string]any)
	assert.Equal(t, "anonymous", caller["kind"])
	assert.Equal(t, false, caller["authenticated"])

	resp, body = s.do(t, nethttp.MethodGet, "/api/me", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	resp, body = s.do(t, nethttp.MethodGet, "/api/admin/ping", "", basicHeader("user", "111"))
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(body))
}

func TestRoutes_BadBasicCredentials(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, nethttp.MethodGet, "/api/me", "", basicHeader("admin", "nope"))

	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(body))
	assert.Empty(t, resp.Header.Get(auth.HeaderAuthToken))
}

func TestRoutes_Login(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, nethttp.MethodPost, "/auth/login", `{"username":"user","password":"111"}`, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	authBody := body["data"].(map[string]any)["auth"].(map[string]any)
	token := authBody["token"].(string)
	assert.Equal(t, token, resp.Header.Get(auth.HeaderAuthToken))
	assert.NotEmpty(t, authBody["expires_at"])

	claims, err := s.codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, []auth.Claim{auth.NewClaim(auth.ClaimUserName, "user"), auth.NewClaim(auth.ClaimRole, "USER")}, claims)

	resp, body = s.do(t, nethttp.MethodPost, "/auth/login", `{"username":"user"}`, nil)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	resp, body = s.do(t, nethttp.MethodPost, "/auth/login", `{"username":"user","password":"x"}`, nil)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(body))
}

func TestRoutes_Health(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, nethttp.MethodGet, "/health/live", "", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])

	resp, body = s.do(t, nethttp.MethodGet, "/health/ready", "", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, "disabled", deps["postgres"])
	assert.Equal(t, "disabled", deps["redis"])

	resp, body = s.do(t, nethttp.MethodGet, "/health/metrics", "", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "auth_outcomes")

	req := httptest.NewRequest(nethttp.MethodGet, "/health/prometheus", nil)
	promResp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, promResp.StatusCode)
	raw, err := io.ReadAll(promResp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `token_auth_http_requests_total{method="GET",status="200"}`)
}

func TestRoutes_NotFound(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, nethttp.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}
