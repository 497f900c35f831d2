package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/aarnav1729/premier-support-hub/internal/api/dto"
	"github.com/aarnav1729/premier-support-hub/internal/api/validation"
	"github.com/aarnav1729/premier-support-hub/internal/domain"
)

// ChatService manages ticket conversations.
type ChatService interface {
	List(ctx context.Context, p domain.Principal, number string) ([]domain.ChatMessage, error)
	Post(ctx context.Context, p domain.Principal, number, message string, attachments []domain.Attachment) (*domain.ChatMessage, error)
}

// ChatHandler exposes ticket conversations.
type ChatHandler struct {
	service   ChatService
	validator *validation.Validator
}

// NewChatHandler constructs handler.
func NewChatHandler(chat ChatService, v *validation.Validator) *ChatHandler {
	return &ChatHandler{service: chat, validator: v}
}

// List GET /api/chat/:ticketNumber.
func (h *ChatHandler) List(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	msgs, err := h.service.List(c.UserContext(), *p, c.Params("ticketNumber"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ChatMessageResponses(msgs)})
}

// Post POST /api/chat/:ticketNumber.
func (h *ChatHandler) Post(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.ChatMessageRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}
	msg, err := h.service.Post(c.UserContext(), *p, c.Params("ticketNumber"), req.Message, dto.Attachments(req.Attachments))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewChatMessageResponse(msg)})
}
