// Package guard holds the gates that run before protected handlers.
//
// Two independent trust channels exist and are checked separately: the server
// side session (RequireSession, RequireAdmin, RequireSelfOrAdmin) and the
// stateless Ticket token (RequireToken). Privileged gates re-read the caller
// from the user store on every request so that a demotion or deletion takes
// effect immediately.
package guard

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"userauth/internal/auth"
	apperrors "userauth/internal/errors"
	"userauth/internal/logging"
	"userauth/internal/model"
	"userauth/internal/repository"
	"userauth/internal/session"
)

const (
	currentUserKey = "guard.currentUser"
	targetIDKey    = "guard.targetID"
	tokenUserKey   = "guard.tokenUserID"
)

// UserFinder is the slice of the user store the gates need.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Guard bundles the gates.
type Guard struct {
	users    UserFinder
	sessions *session.Manager
	tokens   *auth.JWTService
	secure   bool
	log      logging.Logger
}

// New builds a Guard. secure marks the cookies it clears as Secure.
func New(users UserFinder, sessions *session.Manager, tokens *auth.JWTService, secure bool, log logging.Logger) *Guard {
	return &Guard{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		secure:   secure,
		log:      log.With("component", "guard"),
	}
}

// RequireSession rejects requests whose session carries no user.
func (g *Guard) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := session.UserID(c); !ok {
			return apperrors.Unauthorized("Unauthorized: Please log in")
		}
		return next(c)
	}
}

// IsLoggedIn godoc
// @Summary Report whether the client has an active session
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /isLoggedIn [get]
func (g *Guard) IsLoggedIn(c echo.Context) error {
	_, ok := session.UserID(c)
	return c.JSON(http.StatusOK, map[string]bool{"loggedIn": ok})
}

// RequireToken verifies the Ticket cookie and stores the user id it asserts.
// It does not consult the session.
func (g *Guard) RequireToken() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "cookie:" + auth.TicketCookie,
		ContextKey:  tokenUserKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return g.tokens.Verify(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if cookie, cerr := c.Cookie(auth.TicketCookie); cerr != nil || cookie.Value == "" {
				return apperrors.Unauthorized("No token provided")
			}
			g.log.Warn(c.Request().Context(), "token rejected", "error", err)
			return apperrors.Unauthorized("Unauthorized: Invalid or expired token").WithCause(err)
		},
	})
}

// RequireAdmin lets through only callers whose stored record is an admin.
func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := g.resolve(c, "Unauthorized: User not found")
		if err != nil {
			return err
		}
		if !user.IsAdmin {
			return apperrors.Forbidden("Forbidden: You do not have the required permissions")
		}
		c.Set(currentUserKey, user)
		return next(c)
	}
}

// ParseID validates the path parameter as a user id before anything touches the
// store. Equivalent spellings (upper case, braces, urn:uuid: prefix) parse to the
// same id.
func (g *Guard) ParseID(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := uuid.Parse(c.Param(param))
			if err != nil {
				return apperrors.BadRequest("Invalid User ID format")
			}
			c.Set(targetIDKey, id)
			return next(c)
		}
	}
}

// RequireSelfOrAdmin lets through the owner of the target id and any admin.
// It must run after ParseID.
func (g *Guard) RequireSelfOrAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		target, ok := TargetID(c)
		if !ok {
			return apperrors.BadRequest("Invalid User ID format")
		}
		user, err := g.resolve(c, "Logged-in User not found")
		if err != nil {
			return err
		}
		if !user.IsAdmin && user.ID != target {
			return apperrors.Forbidden("Forbidden: You can only access your own information")
		}
		c.Set(currentUserKey, user)
		return next(c)
	}
}

// Logout godoc
// @Summary Log out
// @Description Destroys the session and clears the Ticket cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /logout [get]
func (g *Guard) Logout(c echo.Context) error {
	if err := g.sessions.Destroy(c); err != nil {
		g.log.Error(c.Request().Context(), "destroy session", "error", err)
		return apperrors.Internal("Error logging out", err)
	}
	session.ClearCookie(c, auth.TicketCookie, g.secure)
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// resolve loads the session's user from the store.
func (g *Guard) resolve(c echo.Context, missing string) (*model.User, error) {
	userID, ok := session.UserID(c)
	if !ok {
		return nil, apperrors.Unauthorized("Unauthorized: Please log in")
	}
	user, err := g.users.FindByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.Unauthorized(missing)
		}
		g.log.Error(c.Request().Context(), "resolve session user", "user_id", userID, "error", err)
		return nil, apperrors.Internal("internal server error", err)
	}
	return user, nil
}

// CurrentUser returns the caller resolved by RequireAdmin or RequireSelfOrAdmin.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(currentUserKey).(*model.User)
	return u, ok && u != nil
}

// TargetID returns the id parsed by ParseID.
func TargetID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(targetIDKey).(uuid.UUID)
	return id, ok
}

// TokenUserID returns the user id asserted by the token checked in RequireToken.
func TokenUserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(tokenUserKey).(uuid.UUID)
	return id, ok
}
