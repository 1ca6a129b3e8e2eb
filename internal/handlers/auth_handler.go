package handlers

import (
	"github.com/gofiber/fiber/v2"

	"gerador/internal/middleware"
	"gerador/internal/models"
	"gerador/internal/services"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/refresh", h.HandleRefresh)
	authRoutes.Get("/me", middleware.AuthRequired(h.authService), h.HandleMe)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var input models.UserCreate
	if ok, err := parseBody(c, &input); !ok {
		return err
	}
	// Self registration never grants admin rights.
	input.IsAdmin = false

	user, err := h.authService.RegisterUser(input)
	if err != nil {
		return respondError(c, "Registration failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	token, err := h.authService.LoginUser(req.Email, req.Password)
	if err != nil {
		customLog.Infof("Failed login for %s: %v", req.Email, err)
		return respondError(c, "Authentication failed", err)
	}

	return c.JSON(TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// RefreshRequest carries a still-valid token to exchange.
type RefreshRequest struct {
	Token string `json:"token" validate:"required"`
}

// HandleRefresh exchanges a valid token for a fresh one.
func (h *AuthHandler) HandleRefresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	token, err := h.authService.RefreshToken(req.Token)
	if err != nil {
		return respondError(c, "Could not refresh token", err)
	}
	return c.JSON(TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// HandleMe returns the authenticated user.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user, err := h.authService.GetUserByID(*middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, "Could not load user", err)
	}
	return c.JSON(user)
}
