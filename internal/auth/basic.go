package auth

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Authenticator validates primary credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (Identity, error)
}

// BasicAuth authenticates HTTP Basic credentials when present and no user is
// authenticated yet. Requests without a Basic header pass through untouched.
func BasicAuth(authn Authenticator, reject RejectionHandler) fiber.Handler {
	if reject == nil {
		reject = DefaultRejectionHandler
	}
	return func(c *fiber.Ctx) error {
		sc := SecurityContextFrom(c)
		if sc.Identity.IsUser() {
			return c.Next()
		}

		username, password, ok := parseBasicAuth(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return c.Next()
		}

		identity, err := authn.Authenticate(c.UserContext(), username, password)
		if err != nil {
			ClearIdentity(c)
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="api"`)
			return reject(c, err)
		}

		sc.Identity = identity
		SetSecurityContext(c, sc)
		return c.Next()
	}
}

// AnonymousFallback installs the anonymous placeholder when nothing authenticated the request.
func AnonymousFallback() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sc := SecurityContextFrom(c)
		if !sc.Identity.Authenticated() {
			sc.Identity = AnonymousIdentity()
			SetSecurityContext(c, sc)
		}
		return c.Next()
	}
}

func parseBasicAuth(header string) (username, password string, ok bool) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	username, password, ok = strings.Cut(string(decoded), ":")
	if !ok || username == "" {
		return "", "", false
	}
	return username, password, true
}
