package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "userauth/internal/errors"
	"userauth/internal/guard"
	"userauth/internal/logging"
	"userauth/internal/model"
	"userauth/internal/service"
	"userauth/internal/session"
)

// UserHandler bundles the user resource handlers.
type UserHandler struct {
	svc service.UserService
	log logging.Logger
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService, log logging.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log.With("component", "user_handler")}
}

// CreateUserRequest is the registration payload.
type CreateUserRequest struct {
	Name     string         `json:"name" validate:"required"`
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required,strongpassword"`
	Phone    string         `json:"phone" validate:"required,phone05"`
	Address  *model.Address `json:"address" validate:"required"`
	IsAdmin  *bool          `json:"isAdmin"`
}

// UpdateUserRequest is a partial update; absent fields are kept.
type UpdateUserRequest struct {
	Name     *string        `json:"name" validate:"omitempty,min=1"`
	Email    *string        `json:"email" validate:"omitempty,email"`
	Password *string        `json:"password" validate:"omitempty,strongpassword"`
	Phone    *string        `json:"phone" validate:"omitempty,phone05"`
	Address  *model.Address `json:"address" validate:"omitempty"`
	IsAdmin  *bool          `json:"isAdmin"`
}

// CreateUserResponse is returned after registration.
type CreateUserResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

// CreateUser godoc
// @Summary Register a user
// @Description isAdmin is honored only when the caller's session belongs to an admin.
// @Tags users
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "User payload"
// @Success 200 {object} CreateUserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /user [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.BadRequest("Not enough data for creating a User")
	}
	if err := c.Validate(&req); err != nil {
		msg := validationMessage(err, "Not enough data for creating a User")
		h.log.Info(ctx, "rejected registration", "reason", msg)
		return apperrors.BadRequest(msg)
	}

	actorID, _ := session.UserID(c)
	user, err := h.svc.Create(ctx, actorID, service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  *req.Address,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			h.log.Info(ctx, "registration with taken email")
			return apperrors.Conflict("Email is already busy")
		}
		h.log.Error(ctx, "create user", "error", err)
		return apperrors.Internal("internal server error", err)
	}

	h.log.Info(ctx, "user created", "user_id", user.ID, "admin", user.IsAdmin)
	return c.JSON(http.StatusOK, CreateUserResponse{Message: "User created successfully", User: user})
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	users, err := h.svc.List(ctx)
	if err != nil {
		if errors.Is(err, service.ErrNoUsers) {
			return apperrors.NotFound("No Users found")
		}
		h.log.Error(ctx, "list users", "error", err)
		return apperrors.Internal("internal server error", err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetCurrentUser godoc
// @Summary Get the user named by the Ticket token
// @Tags users
// @Produce json
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/user [get]
func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	id, ok := guard.TokenUserID(c)
	if !ok {
		return apperrors.Unauthorized("No token provided")
	}
	return h.get(c, id, "User not found")
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/user/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, ok := guard.TargetID(c)
	if !ok {
		return apperrors.BadRequest("Invalid User ID format")
	}
	return h.get(c, id, "Couldn't find the User")
}

func (h *UserHandler) get(c echo.Context, id uuid.UUID, missing string) error {
	ctx := c.Request().Context()
	user, err := h.svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			h.log.Info(ctx, "user lookup missed", "user_id", id)
			return apperrors.NotFound(missing)
		}
		h.log.Error(ctx, "get user", "user_id", id, "error", err)
		return apperrors.Internal("internal server error", err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser godoc
// @Summary Update user
// @Description Partial update. isAdmin is applied only for admin callers.
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {string} string "Updated successfully"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/user/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := guard.TargetID(c)
	if !ok {
		return apperrors.BadRequest("Invalid User ID format")
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.BadRequest("Validation error: invalid request")
	}
	if err := c.Validate(&req); err != nil {
		msg := validationMessage(err, "Validation error: address is incomplete")
		h.log.Info(ctx, "rejected update", "user_id", id, "reason", msg)
		return apperrors.BadRequest(msg)
	}

	actor, _ := guard.CurrentUser(c)
	_, err := h.svc.Update(ctx, actor, id, service.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			h.log.Info(ctx, "update target missing", "user_id", id)
			return apperrors.NotFound("User was not found or update failed")
		case errors.Is(err, service.ErrEmailTaken):
			h.log.Info(ctx, "update with taken email", "user_id", id)
			return apperrors.Conflict("Email is already busy")
		}
		h.log.Error(ctx, "update user", "user_id", id, "error", err)
		return apperrors.Internal("internal server error", err)
	}
	return c.JSON(http.StatusOK, "Updated successfully")
}

// DeleteUser godoc
// @Summary Delete user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {string} string "Deleted successfully"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/user/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := guard.TargetID(c)
	if !ok {
		return apperrors.BadRequest("Invalid User ID format")
	}
	if err := h.svc.Delete(ctx, id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			h.log.Info(ctx, "delete target missing", "user_id", id)
			return apperrors.NotFound("User not found or deleting failed")
		}
		h.log.Error(ctx, "delete user", "user_id", id, "error", err)
		return apperrors.Internal("internal server error", err)
	}
	h.log.Info(ctx, "user deleted", "user_id", id)
	return c.JSON(http.StatusOK, "Deleted successfully")
}
