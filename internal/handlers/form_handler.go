package handlers

import (
	"github.com/gofiber/fiber/v2"

	"gerador/internal/middleware"
	"gerador/internal/models"
	"gerador/internal/services"
)

// FormHandler handles HTTP requests for forms and their responses.
type FormHandler struct {
	service     *services.FormService
	authService *services.AuthService
	limiter     *middleware.RateLimiter
}

// NewFormHandler creates a new FormHandler. A nil limiter leaves submissions unthrottled.
func NewFormHandler(service *services.FormService, authService *services.AuthService, limiter *middleware.RateLimiter) *FormHandler {
	return &FormHandler{
		service:     service,
		authService: authService,
		limiter:     limiter,
	}
}

// RegisterRoutes registers the form routes with the Fiber app.
func (h *FormHandler) RegisterRoutes(router fiber.Router) {
	required := middleware.AuthRequired(h.authService)
	optional := middleware.OptionalAuth(h.authService)

	formRoutes := router.Group("/forms")
	formRoutes.Post("/", required, h.HandleCreateForm)
	formRoutes.Get("/", optional, h.HandleListForms)
	formRoutes.Get("/user/forms", required, h.HandleListUserForms)
	formRoutes.Get("/:id", optional, h.HandleGetForm)
	formRoutes.Put("/:id", required, h.HandleUpdateForm)
	formRoutes.Delete("/:id", required, h.HandleDeleteForm)
	formRoutes.Get("/:id/responses", required, h.HandleGetFormResponses)

	submit := []fiber.Handler{optional}
	if h.limiter != nil {
		submit = append(submit, h.limiter.Handler())
	}
	formRoutes.Post("/:id/submit", append(submit, h.HandleSubmitResponse)...)
}

// HandleCreateForm creates a form owned by the caller.
func (h *FormHandler) HandleCreateForm(c *fiber.Ctx) error {
	var input models.FormCreate
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	form, err := h.service.CreateForm(*middleware.CurrentUserID(c), input)
	if err != nil {
		return respondError(c, "Could not create form", err)
	}
	return c.Status(fiber.StatusCreated).JSON(form)
}

// HandleListForms lists the caller's forms and every public form.
func (h *FormHandler) HandleListForms(c *fiber.Ctx) error {
	skip, limit := pagination(c)
	forms, err := h.service.ListForms(middleware.CurrentUserID(c), skip, limit)
	if err != nil {
		return respondError(c, "Could not retrieve forms", err)
	}
	return c.JSON(forms)
}

// HandleListUserForms lists the forms owned by the caller.
func (h *FormHandler) HandleListUserForms(c *fiber.Ctx) error {
	skip, limit := pagination(c)
	forms, err := h.service.ListUserForms(*middleware.CurrentUserID(c), skip, limit)
	if err != nil {
		return respondError(c, "Could not retrieve forms", err)
	}
	return c.JSON(forms)
}

// HandleGetForm returns a single form visible to the caller.
func (h *FormHandler) HandleGetForm(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "form id")
	}
	form, err := h.service.GetForm(id, middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, "Could not retrieve form", err)
	}
	return c.JSON(form)
}

// HandleUpdateForm applies a partial update to a form owned by the caller.
func (h *FormHandler) HandleUpdateForm(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "form id")
	}
	var input models.FormUpdate
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	form, err := h.service.UpdateForm(id, input, *middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, "Could not update form", err)
	}
	return c.JSON(form)
}

// HandleDeleteForm deletes a form owned by the caller together with its responses.
func (h *FormHandler) HandleDeleteForm(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "form id")
	}
	if err := h.service.DeleteForm(id, *middleware.CurrentUserID(c)); err != nil {
		return respondError(c, "Could not delete form", err)
	}
	return c.JSON(fiber.Map{"message": "Form deleted successfully"})
}

// SubmitRequest is the body of a form submission.
type SubmitRequest struct {
	Answers     models.Answers `json:"answers"`
	Email       *string        `json:"email" validate:"omitempty,email,max=255"`
	Metadata    map[string]any `json:"metadata"`
	Fingerprint string         `json:"fingerprint" validate:"max=255"`
}

// HandleSubmitResponse submits answers to a form. Anonymous callers are
// accepted for public forms.
func (h *FormHandler) HandleSubmitResponse(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "form id")
	}
	var req SubmitRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	if req.Answers == nil {
		req.Answers = models.Answers{}
	}

	response, err := h.service.SubmitResponse(services.SubmissionRequest{
		FormID:       id,
		Answers:      req.Answers,
		CallerUserID: middleware.CurrentUserID(c),
		CallerEmail:  req.Email,
		Metadata:     req.Metadata,
		IPAddress:    c.IP(),
		UserAgent:    c.Get(fiber.HeaderUserAgent),
		Fingerprint:  req.Fingerprint,
	})
	if err != nil {
		return respondError(c, "Submission rejected", err)
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}

// HandleGetFormResponses lists the responses of a form owned by the caller.
func (h *FormHandler) HandleGetFormResponses(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "form id")
	}
	skip, limit := pagination(c)
	responses, err := h.service.GetFormResponses(id, *middleware.CurrentUserID(c), skip, limit)
	if err != nil {
		return respondError(c, "Could not retrieve responses", err)
	}
	return c.JSON(responses)
}
