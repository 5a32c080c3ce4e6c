package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"userauth/docs"
	"userauth/internal/config"
	apperrors "userauth/internal/errors"
	"userauth/internal/guard"
	"userauth/internal/handler"
	"userauth/internal/logging"
	"userauth/internal/session"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log logging.Logger,
	sessions *session.Manager,
	g *guard.Guard,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
) {
	e.HTTPErrorHandler = apperrors.Handler(log)
	e.Validator = handler.NewValidator()

	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))
	e.Use(sessions.Middleware())

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Session
	e.POST("/login", authHandler.Login)
	e.GET("/logout", g.Logout, g.RequireSession)
	e.GET("/isLoggedIn", g.IsLoggedIn)

	// Registration is open; the handler decides whether isAdmin is honored.
	e.POST("/user", userHandler.CreateUser)

	users := e.Group("/users", g.RequireSession)
	users.GET("", userHandler.ListUsers, g.RequireAdmin)
	users.GET("/user", userHandler.GetCurrentUser, g.RequireToken())
	users.GET("/user/:id", userHandler.GetUser, g.ParseID("id"), g.RequireSelfOrAdmin)
	users.PUT("/user/:id", userHandler.UpdateUser, g.ParseID("id"), g.RequireSelfOrAdmin)
	users.DELETE("/user/:id", userHandler.DeleteUser, g.ParseID("id"), g.RequireAdmin)
}

func requestLogger(log logging.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				args = append(args, "error", v.Error)
			}
			log.Info(c.Request().Context(), "request", args...)
			return nil
		},
	})
}
