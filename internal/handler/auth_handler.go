package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"userauth/internal/auth"
	apperrors "userauth/internal/errors"
	"userauth/internal/logging"
	"userauth/internal/service"
	"userauth/internal/session"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	sessions    *session.Manager
	tokenTTL    time.Duration
	secure      bool
	log         logging.Logger
}

// NewAuthHandler creates a new auth handler. tokenTTL sets the Ticket cookie
// lifetime; zero makes it a browser-session cookie.
func NewAuthHandler(authService service.AuthService, sessions *session.Manager, tokenTTL time.Duration, secure bool, log logging.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		tokenTTL:    tokenTTL,
		secure:      secure,
		log:         log.With("component", "auth_handler"),
	}
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// MessageResponse is the body of operations that only report an outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// Login godoc
// @Summary Login user
// @Description Starts a session and sets the sid and Ticket cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.BadRequest("Email and password are required")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.BadRequest("Email and password are required")
	}

	user, token, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			h.log.Info(ctx, "login for unknown email")
			return apperrors.NotFound("User not found")
		case errors.Is(err, service.ErrInvalidPassword):
			h.log.Info(ctx, "login with wrong password")
			return apperrors.Unauthorized("Invalid password")
		}
		h.log.Error(ctx, "login", "error", err)
		return apperrors.Internal("internal server error", err)
	}

	if _, err := h.sessions.Establish(c, user.ID); err != nil {
		h.log.Error(ctx, "establish session", "user_id", user.ID, "error", err)
		return apperrors.Internal("internal server error", err)
	}

	cookie := &http.Cookie{
		Name:     auth.TicketCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if h.tokenTTL > 0 {
		cookie.MaxAge = int(h.tokenTTL / time.Second)
	}
	c.SetCookie(cookie)

	h.log.Info(ctx, "user logged in", "user_id", user.ID)
	return c.JSON(http.StatusOK, MessageResponse{Message: "Logged in successfully"})
}
