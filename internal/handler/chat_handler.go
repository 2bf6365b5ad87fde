package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/tastegent/tastegent/internal/domain"
)

// ChatHandler relays guest conversations to the assistant backend
type ChatHandler struct {
	chatService domain.ChatService
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatService domain.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat handles POST /chat
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req domain.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Message is required"})
	}

	resp, err := h.chatService.Reply(c.UserContext(), req)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Assistant is unavailable, please try again later"})
	}

	return c.JSON(resp)
}
