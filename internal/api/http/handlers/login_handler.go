package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/token-auth-service/internal/api/dto"
	"github.com/spec-kit/token-auth-service/internal/auth"
	"github.com/spec-kit/token-auth-service/internal/service"
	apperrors "github.com/spec-kit/token-auth-service/pkg/util/errorutil"
)

// LoginHandler exposes the explicit login endpoint.
type LoginHandler struct {
	logins *service.LoginService
}

// NewLoginHandler constructs handler.
func NewLoginHandler(logins *service.LoginService) *LoginHandler {
	return &LoginHandler{logins: logins}
}

// Login handles POST /auth/login.
func (h *LoginHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", map[string]any{
			"username": req.Username != "",
			"password": req.Password != "",
		})
	}

	result, err := h.logins.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	c.Set(auth.HeaderAuthToken, result.Token)
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.IdentityResponse{
				Username:      result.Identity.Principal.Username,
				Roles:         result.Identity.Principal.Roles,
				Kind:          result.Identity.Kind.String(),
				Authenticated: true,
			},
			"auth": dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
		},
	})
}
