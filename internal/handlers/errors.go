package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"gerador/internal/logger"
	"gerador/internal/services"
)

var customLog = logger.NewLogger()

var validate = validator.New()

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrDuplicateResponse), errors.Is(err, services.ErrEmailTaken):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrSchema),
		errors.Is(err, services.ErrMissingRequiredField),
		errors.Is(err, services.ErrUnknownField),
		errors.Is(err, services.ErrRuleViolation),
		errors.Is(err, services.ErrTypeMismatch),
		errors.Is(err, services.ErrInvalidOption),
		errors.Is(err, services.ErrFormInactive),
		errors.Is(err, services.ErrFormExpired):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotAuthorized), errors.Is(err, services.ErrInactiveUser):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err with the status errorStatus picks for it. Field
// level failures also report the offending field and rule.
func respondError(c *fiber.Ctx, message string, err error) error {
	status := errorStatus(err)
	body := fiber.Map{
		"message": message,
		"error":   err.Error(),
	}

	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		body["error"] = vErr.Message
		if vErr.FieldID != "" {
			body["field"] = vErr.FieldID
		}
		if vErr.Rule != "" {
			body["rule"] = vErr.Rule
		}
	}

	if status == fiber.StatusInternalServerError {
		customLog.Errorf("%s: %v", message, err)
		body["error"] = "internal server error"
	}
	return c.Status(status).JSON(body)
}

// parseBody decodes and validates the request body into out. When ok is
// false the 400 response has already been written and err is what the
// handler should return.
func parseBody(c *fiber.Ctx, out any) (ok bool, err error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := validate.Struct(out); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"error":   err.Error(),
			})
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}
	return true, nil
}

// paramID reads a positive numeric path parameter.
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func invalidID(c *fiber.Ctx, name string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": fmt.Sprintf("Invalid %s", name),
	})
}

// pagination reads skip and limit query parameters.
func pagination(c *fiber.Ctx) (skip, limit int) {
	skip = c.QueryInt("skip", 0)
	limit = c.QueryInt("limit", defaultLimit)
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	return skip, limit
}
