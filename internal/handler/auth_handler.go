package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tastegent/tastegent/internal/service"
)

// AuthHandler issues and refreshes admin tokens
type AuthHandler struct {
	tokenService *service.TokenService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(tokenService *service.TokenService) *AuthHandler {
	return &AuthHandler{tokenService: tokenService}
}

// Login handles POST /token
// Accepts form-encoded username/password and returns a token pair
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	if username == "" || password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username and password are required"})
	}

	pair, err := h.tokenService.Login(c.UserContext(), username, password, c.Get("User-Agent"), c.IP())
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Incorrect username or password"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(pair)
}

// RefreshRequest is the body for the refresh endpoint
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh handles POST /token/refresh
// Rotates a valid refresh token into a new token pair
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "refresh_token is required"})
	}

	pair, err := h.tokenService.RefreshAccessToken(c.UserContext(), req.RefreshToken, c.Get("User-Agent"), c.IP())
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired refresh token"})
	}

	return c.JSON(pair)
}
