package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agriconnect/platform/internal/core/domain"
	"github.com/agriconnect/platform/internal/core/ports"
)

// Notifier is the asynchronous delivery hook; the sharded dispatcher
// satisfies it. A nil notifier skips delivery.
type Notifier interface {
	Enqueue(input ports.NotificationInput)
}

type AuthHandler struct {
	authService ports.AuthService
	notifier    Notifier
}

func NewAuthHandler(authService ports.AuthService, notifier Notifier) *AuthHandler {
	return &AuthHandler{authService: authService, notifier: notifier}
}

type registerRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	Role         string `json:"role" validate:"omitempty,oneof=admin farmer expert public"`
	Location     string `json:"location"`
	Organization string `json:"organization"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type switchRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin farmer expert public"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Role:         req.Role,
		Location:     req.Location,
		Organization: req.Organization,
	})
	if err != nil {
		return err
	}

	if h.notifier != nil {
		h.notifier.Enqueue(ports.NotificationInput{
			UserID:  &user.ID,
			Title:   "Welcome to AgriConnect",
			Message: "Your account is ready. Browse resources, forums and events to get started.",
			Level:   domain.LevelSuccess,
		})
	}

	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// SwitchRole changes the caller's own role and re-issues the token.
func (h *AuthHandler) SwitchRole(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req switchRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.authService.SwitchRole(c.Request().Context(), userID, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}
