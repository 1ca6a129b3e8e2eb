package handlers

import (
	"github.com/gofiber/fiber/v2"

	"gerador/internal/middleware"
	"gerador/internal/models"
	"gerador/internal/services"
)

// UserHandler exposes the administrative user views.
type UserHandler struct {
	service     *services.UserService
	authService *services.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, authService *services.AuthService) *UserHandler {
	return &UserHandler{service: service, authService: authService}
}

// RegisterRoutes registers the admin-only user routes.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users",
		middleware.AuthRequired(h.authService),
		middleware.AdminRequired(h.authService),
	)
	userRoutes.Get("/", h.HandleListUsers)
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Get("/:id", h.HandleGetUser)
	userRoutes.Put("/:id", h.HandleUpdateUser)
	userRoutes.Delete("/:id", h.HandleDeleteUser)
	userRoutes.Post("/:id/block", h.HandleBlockUser)
}

func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	skip, limit := pagination(c)
	users, err := h.service.ListUsers(skip, limit)
	if err != nil {
		return respondError(c, "Could not retrieve users", err)
	}
	return c.JSON(users)
}

func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var input models.UserCreate
	if ok, err := parseBody(c, &input); !ok {
		return err
	}
	user, err := h.service.CreateUser(input)
	if err != nil {
		return respondError(c, "Could not create user", err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "user id")
	}
	user, err := h.service.GetUser(id)
	if err != nil {
		return respondError(c, "Could not retrieve user", err)
	}
	return c.JSON(user)
}

func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "user id")
	}
	var input models.UserUpdate
	if ok, err := parseBody(c, &input); !ok {
		return err
	}
	user, err := h.service.UpdateUser(id, input)
	if err != nil {
		return respondError(c, "Could not update user", err)
	}
	return c.JSON(user)
}

// HandleDeleteUser deletes a user with their forms and logs. Administrators
// cannot delete themselves.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "user id")
	}
	if *middleware.CurrentUserID(c) == id {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Administrators cannot delete their own account",
		})
	}
	if err := h.service.DeleteUser(id); err != nil {
		return respondError(c, "Could not delete user", err)
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// BlockRequest is the body of a block action.
type BlockRequest struct {
	Reason string `json:"reason" validate:"required,max=255"`
}

func (h *UserHandler) HandleBlockUser(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "user id")
	}
	var req BlockRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	if *middleware.CurrentUserID(c) == id {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Administrators cannot block their own account",
		})
	}
	user, err := h.service.BlockUser(id, req.Reason)
	if err != nil {
		return respondError(c, "Could not block user", err)
	}
	return c.JSON(user)
}
