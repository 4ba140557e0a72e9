package auth

import "github.com/gofiber/fiber/v2"

// RequireAuthenticated rejects requests without a real (non-anonymous) user.
func RequireAuthenticated(reject RejectionHandler) fiber.Handler {
	if reject == nil {
		reject = DefaultRejectionHandler
	}
	return func(c *fiber.Ctx) error {
		if !SecurityContextFrom(c).Identity.IsUser() {
			return reject(c, ErrAuthenticationRequired)
		}
		return c.Next()
	}
}

// RequireRole ensures the caller holds one of the allowed roles. Failures go
// through reject with ErrAuthenticationRequired or ErrInsufficientRole.
func RequireRole(reject RejectionHandler, allowed ...string) fiber.Handler {
	if reject == nil {
		reject = DefaultRejectionHandler
	}
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		identity := SecurityContextFrom(c).Identity
		if !identity.IsUser() {
			return reject(c, ErrAuthenticationRequired)
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		for _, role := range identity.Principal.Roles {
			if _, exists := allowedSet[role]; exists {
				return c.Next()
			}
		}
		return reject(c, ErrInsufficientRole)
	}
}
