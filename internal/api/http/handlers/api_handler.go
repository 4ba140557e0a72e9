package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/token-auth-service/internal/api/dto"
	"github.com/spec-kit/token-auth-service/internal/auth"
)

// APIHandler serves the protected API surface.
type APIHandler struct{}

// NewAPIHandler constructs handler.
func NewAPIHandler() *APIHandler {
	return &APIHandler{}
}

// Me handles GET /api/me.
func (h *APIHandler) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": identityResponse(c)})
}

// Ping handles GET /api/public/ping and GET /api/admin/ping.
func (h *APIHandler) Ping(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"pong":   true,
			"caller": identityResponse(c),
		},
	})
}

func identityResponse(c *fiber.Ctx) dto.IdentityResponse {
	id := auth.SecurityContextFrom(c).Identity
	roles := id.Principal.Roles
	if roles == nil {
		roles = []string{}
	}
	return dto.IdentityResponse{
		Username:      id.Principal.Username,
		Roles:         roles,
		Kind:          id.Kind.String(),
		Authenticated: id.IsUser(),
	}
}
