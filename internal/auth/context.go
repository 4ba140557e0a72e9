package auth

import "github.com/gofiber/fiber/v2"

const securityContextKey = "auth_security_context"

// SecurityContext is the authentication state of one request. It lives in the
// request locals and is never shared across requests.
type SecurityContext struct {
	Identity Identity
	// TokenIssued is set once a token was attached to this request's response.
	TokenIssued bool
}

// SecurityContextFrom returns the request's context, or an empty one.
func SecurityContextFrom(c *fiber.Ctx) SecurityContext {
	sc, ok := c.Locals(securityContextKey).(SecurityContext)
	if !ok {
		return SecurityContext{Identity: NoIdentity()}
	}
	return sc
}

// SetSecurityContext stores sc for the rest of the request.
func SetSecurityContext(c *fiber.Ctx, sc SecurityContext) {
	c.Locals(securityContextKey, sc)
}

// ClearIdentity drops any identity but keeps the issued marker.
func ClearIdentity(c *fiber.Ctx) {
	sc := SecurityContextFrom(c)
	sc.Identity = NoIdentity()
	SetSecurityContext(c, sc)
}

// IdentityFromContext retrieves the authenticated principal, if any.
func IdentityFromContext(c *fiber.Ctx) (Identity, bool) {
	id := SecurityContextFrom(c).Identity
	return id, id.Authenticated()
}
