package handlers

import (
	"github.com/gofiber/fiber/v2"

	"gerador/internal/middleware"
	"gerador/internal/models"
	"gerador/internal/services"
)

// ProcessingLogHandler exposes the audit trail.
type ProcessingLogHandler struct {
	service     *services.ProcessingLogService
	authService *services.AuthService
}

// NewProcessingLogHandler creates a new ProcessingLogHandler.
func NewProcessingLogHandler(service *services.ProcessingLogService, authService *services.AuthService) *ProcessingLogHandler {
	return &ProcessingLogHandler{service: service, authService: authService}
}

// RegisterRoutes registers the processing log routes.
func (h *ProcessingLogHandler) RegisterRoutes(router fiber.Router) {
	logRoutes := router.Group("/processing-logs", middleware.AuthRequired(h.authService))
	logRoutes.Get("/", middleware.AdminRequired(h.authService), h.HandleListLogs)
	logRoutes.Post("/", h.HandleCreateLog)
	logRoutes.Get("/user/:user_id", h.HandleListUserLogs)
}

// CreateLogRequest is the body accepted when a client records an action.
type CreateLogRequest struct {
	Action       string  `json:"action" validate:"required,max=50"`
	Details      string  `json:"details"`
	Status       string  `json:"status" validate:"required,oneof=success failed"`
	ErrorMessage *string `json:"error_message"`
}

// HandleCreateLog records an entry for the caller.
func (h *ProcessingLogHandler) HandleCreateLog(c *fiber.Ctx) error {
	var req CreateLogRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	entry := &models.ProcessingLog{
		UserID:       *middleware.CurrentUserID(c),
		Action:       req.Action,
		Details:      req.Details,
		Status:       req.Status,
		ErrorMessage: req.ErrorMessage,
	}
	if err := h.service.CreateLog(entry); err != nil {
		return respondError(c, "Could not create processing log", err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// HandleListLogs lists every entry. Admin only.
func (h *ProcessingLogHandler) HandleListLogs(c *fiber.Ctx) error {
	skip, limit := pagination(c)
	logs, err := h.service.GetAllLogs(skip, limit)
	if err != nil {
		return respondError(c, "Could not retrieve processing logs", err)
	}
	return c.JSON(logs)
}

// HandleListUserLogs lists the entries of one user, for that user or an admin.
func (h *ProcessingLogHandler) HandleListUserLogs(c *fiber.Ctx) error {
	userID, ok := paramID(c, "user_id")
	if !ok {
		return invalidID(c, "user id")
	}

	callerID := *middleware.CurrentUserID(c)
	if callerID != userID {
		caller, err := h.authService.GetUserByID(callerID)
		if err != nil || !caller.IsAdmin {
			return respondError(c, "Not enough permissions", services.ErrNotAuthorized)
		}
	}

	logs, err := h.service.GetUserLogs(userID)
	if err != nil {
		return respondError(c, "Could not retrieve processing logs", err)
	}
	return c.JSON(logs)
}
