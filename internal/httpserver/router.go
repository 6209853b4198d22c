package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/vidtube/internal/middleware"
)

type Deps struct {
	AuthHandler  *AuthHTTP
	AccessSecret []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMw := middleware.NewSimpleAuth(d.AccessSecret)

	users := e.Group("/api/v1/users")

	users.POST("/register", d.AuthHandler.Register)
	users.POST("/login", d.AuthHandler.Login)
	users.POST("/refresh-token", d.AuthHandler.Refresh)
	users.GET("/search", d.AuthHandler.SearchChannels)
	users.GET("/c/:username", d.AuthHandler.ChannelProfile, authMw.OptionalAuth)

	private := users.Group("")
	private.Use(authMw.RequireAuth)

	private.POST("/logout", d.AuthHandler.LogOut)
	private.POST("/change-password", d.AuthHandler.ChangePassword)
	private.GET("/current-user", d.AuthHandler.CurrentUser)
	private.PATCH("/update-account", d.AuthHandler.UpdateAccount)
	private.PATCH("/avatar", d.AuthHandler.UpdateAvatar)
	private.PATCH("/cover-image", d.AuthHandler.UpdateCoverImage)
}
