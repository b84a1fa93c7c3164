package chat

import (
	"errors"

	"github.com/adiyogi/wellness-api/model"
	"github.com/adiyogi/wellness-api/services/therapy"
	"github.com/adiyogi/wellness-api/utils/middleware"
	"github.com/adiyogi/wellness-api/utils/response"
	"github.com/adiyogi/wellness-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ChatHandler handles therapy session and message requests
type ChatHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	runner    therapy.Runner
}

// NewChatHandler creates a new chat handler
func NewChatHandler(db *gorm.DB, runner therapy.Runner) *ChatHandler {
	return &ChatHandler{
		db:        db,
		validator: validation.NewValidator(),
		runner:    runner,
	}
}

// CreateMessageRequest represents the request to append a chat turn
type CreateMessageRequest struct {
	SessionID   string `json:"session_id" validate:"required,max=100"`
	Issue       string `json:"issue" validate:"omitempty,max=100"`
	UserMessage string `json:"user_message" validate:"required"`
}

// CreateMessage handles POST /api/message. It gets or creates the session,
// stores the user turn, asks the therapy service for the assistant turn and
// stores that too.
func (h *ChatHandler) CreateMessage(c *fiber.Ctx) error {
	var req CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationFailed(c, validation.FormatValidationErrors(err))
	}

	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	// Get or create the session. Sessions created before signup have no owner
	// yet; the first authenticated message claims them.
	var session model.Session
	err := h.db.Where("session_id = ? AND (user_id = ? OR user_id IS NULL)", req.SessionID, user.ID).
		First(&session).Error
	switch {
	case err == nil:
		if session.UserID == nil {
			if err := h.db.Model(&session).Update("user_id", user.ID).Error; err != nil {
				return response.InternalServerError(c, "Failed to claim session")
			}
			session.UserID = &user.ID
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		session = model.Session{
			SessionID: req.SessionID,
			Issue:     req.Issue,
			UserID:    &user.ID,
		}
		if err := h.db.Create(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return response.Conflict(c, "Session id is already in use")
			}
			return response.InternalServerError(c, "Failed to create session")
		}
	default:
		return response.InternalServerError(c, "Failed to look up session")
	}

	userMsg := model.Message{
		SessionID: session.ID,
		Role:      model.MessageRoleUser,
		Text:      req.UserMessage,
	}
	if err := h.db.Create(&userMsg).Error; err != nil {
		return response.InternalServerError(c, "Failed to store message")
	}

	issue := req.Issue
	if issue == "" {
		issue = session.Issue
	}

	// No retry around the therapy call; a failure surfaces as a 500
	result, err := h.runner.RunTurn(c.Context(), issue, req.SessionID, req.UserMessage)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate assistant reply")
	}

	assistantMsg := model.Message{
		SessionID: session.ID,
		Role:      model.MessageRoleAssistant,
		Text:      result.AssistantText,
		Emotion:   result.Emotion,
		Extra:     result.Extra,
	}
	if err := h.db.Create(&assistantMsg).Error; err != nil {
		return response.InternalServerError(c, "Failed to store assistant message")
	}

	return response.Created(c, fiber.Map{
		"session":  session,
		"messages": []model.Message{userMsg, assistantMsg},
	})
}

// GetSessionMessages handles GET /api/session/:session_id/messages. Unknown or
// unowned sessions return an empty shell with 200 so clients can treat brand
// new sessions uniformly.
func (h *ChatHandler) GetSessionMessages(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")

	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var session model.Session
	err := h.db.Where("session_id = ? AND user_id = ?", sessionID, user.ID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Success(c, fiber.Map{
				"session":  nil,
				"messages": []model.Message{},
			})
		}
		return response.InternalServerError(c, "Failed to look up session")
	}

	var messages []model.Message
	if err := h.db.Where("session_id = ?", session.ID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch messages")
	}

	return response.Success(c, fiber.Map{
		"session":  session,
		"messages": messages,
	})
}
