package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"timely/internal/apperrors"
	"timely/internal/services"
	"timely/internal/validation"
	"timely/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/streadway/amqp"
)

// SessionHandler records completed sessions and serves their history.
type SessionHandler struct {
	service  *services.ActivityService
	validate *validator.Validate
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(service *services.ActivityService) *SessionHandler {
	return &SessionHandler{
		service:  service,
		validate: validation.New(),
	}
}

// RegisterRoutes registers the session routes behind the auth middleware.
func (h *SessionHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	sessionRoutes := router.Group("/stacks/sessions", authRequired)
	sessionRoutes.Post("/", Authed(h.HandleCreateSession))
	sessionRoutes.Get("/history", Authed(h.HandleHistory))
}

// CompletionRequest is the body of a finished session. Clients send either
// the completed items or just their count.
type CompletionRequest struct {
	StackID        string        `json:"stackId" validate:"max=64"`
	TotalDuration  int64         `json:"totalDuration" validate:"gte=0"`
	CompletedItems []interface{} `json:"completedItems"`
	ItemCount      *int          `json:"itemCount" validate:"omitempty,gte=0"`
}

func (r CompletionRequest) items() int {
	if r.ItemCount != nil {
		return *r.ItemCount
	}
	return len(r.CompletedItems)
}

// HandleCreateSession records a completion for the caller.
func (h *SessionHandler) HandleCreateSession(c *fiber.Ctx, identity services.Identity) error {
	var req CompletionRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	res, err := h.service.RecordCompletion(c.UserContext(), services.Completion{
		UserID:        identity.UserID,
		StackID:       req.StackID,
		TotalDuration: req.TotalDuration,
		ItemCount:     req.items(),
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Session saved successfully",
		"sessionId": res.Session.ID,
		"streak":    res.Streak,
		"stats":     res.Stats,
	})
}

// HandleHistory returns a page of the caller's sessions, newest first.
func (h *SessionHandler) HandleHistory(c *fiber.Ctx, identity services.Identity) error {
	page, err := h.service.History(c.UserContext(), identity.UserID, c.QueryInt("page", 1), c.QueryInt("limit", services.DefaultHistoryLimit))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"sessions": page.Sessions,
		"pagination": fiber.Map{
			"total": page.Total,
			"page":  page.Page,
			"limit": page.Limit,
			"pages": page.Pages,
		},
	})
}

// CompletionMessage is the payload of the completion queue.
type CompletionMessage struct {
	UserID        string `json:"userId"`
	StackID       string `json:"stackId"`
	TotalDuration int64  `json:"totalDuration"`
	ItemCount     int    `json:"itemCount"`
}

// HandleCompletionMessage records a completion delivered over RabbitMQ.
// Payloads that can never succeed are marked for discarding.
func (h *SessionHandler) HandleCompletionMessage(msg amqp.Delivery) error {
	var m CompletionMessage
	if err := json.Unmarshal(msg.Body, &m); err != nil {
		return fmt.Errorf("decoding completion message: %v: %w", err, rabbitmq.ErrDiscard)
	}

	_, err := h.service.RecordCompletion(context.Background(), services.Completion{
		UserID:        m.UserID,
		StackID:       m.StackID,
		TotalDuration: m.TotalDuration,
		ItemCount:     m.ItemCount,
	})
	if errors.Is(err, apperrors.ErrMalformedInput) || errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%v: %w", err, rabbitmq.ErrDiscard)
	}
	return err
}
