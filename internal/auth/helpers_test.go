package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/spec-kit/token-auth-service/pkg/util/errorutil"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type mockCodec struct {
	mock.Mock
}

func (m *mockCodec) Issue(claims []Claim, ttlMinutes int) (string, error) {
	args := m.Called(claims, ttlMinutes)
	return args.String(0), args.Error(1)
}

func (m *mockCodec) Verify(token string) ([]Claim, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).([]Claim)
	return claims, args.Error(1)
}

// countingVerifier wraps a verifier and counts calls.
type countingVerifier struct {
	mu    sync.Mutex
	inner TokenVerifier
	calls int
}

func (v *countingVerifier) Verify(token string) ([]Claim, error) {
	v.mu.Lock()
	v.calls++
	v.mu.Unlock()
	return v.inner.Verify(token)
}

func (v *countingVerifier) Calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

type stubAuthenticator struct {
	users map[string]struct {
		password string
		roles    []string
	}
}

var errBadCredentials = errors.New("bad credentials")

func newStubAuthenticator() *stubAuthenticator {
	s := &stubAuthenticator{users: map[string]struct {
		password string
		roles    []string
	}{}}
	s.users["admin"] = struct {
		password string
		roles    []string
	}{password: "111", roles: []string{"ADMIN", "USER"}}
	s.users["user"] = struct {
		password string
		roles    []string
	}{password: "111", roles: []string{"USER"}}
	return s
}

func (s *stubAuthenticator) Authenticate(_ context.Context, username, password string) (Identity, error) {
	u, ok := s.users[username]
	if !ok || u.password != password {
		return NoIdentity(), errBadCredentials
	}
	return CredentialsIdentity(username, u.roles), nil
}

func testErrorHandler(c *fiber.Ctx, err error) error {
	de := apperrors.ToDomainError(err)
	return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{
		"code":    de.Code,
		"message": de.Message,
	}})
}

func newGet(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}
