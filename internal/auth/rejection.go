package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/token-auth-service/pkg/util/errorutil"
)

// ErrAuthenticationRequired is the reason used when a route needs a user and
// none was authenticated.
var ErrAuthenticationRequired = errors.New("authentication required")

// ErrInsufficientRole is the reason used when the caller lacks every allowed role.
var ErrInsufficientRole = errors.New("insufficient role")

// RejectionHandler turns an authentication failure into the client response.
// Its return value ends the request.
type RejectionHandler func(c *fiber.Ctx, reason error) error

// DefaultRejectionHandler answers 401 without describing why a token failed,
// and 403 for ErrInsufficientRole.
// Reasons that already carry an HTTP status (throttling, bad credentials) keep it.
func DefaultRejectionHandler(c *fiber.Ctx, reason error) error {
	var de *apperrors.DomainError
	if errors.As(reason, &de) {
		return de
	}
	if errors.Is(reason, ErrInsufficientRole) {
		return apperrors.NewForbidden("insufficient role")
	}
	if errors.Is(reason, ErrTokenInvalid) {
		return apperrors.NewUnauthorized("invalid or expired token")
	}
	return apperrors.NewUnauthorized("authentication required")
}
