package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	jwthelp "github.com/Skotchmaster/vidtube/pkg/jwt"
	"github.com/Skotchmaster/vidtube/pkg/tokens"
)

type SimpleAuth struct {
	AccessSecret []byte
}

func NewSimpleAuth(secret []byte) *SimpleAuth {
	return &SimpleAuth{AccessSecret: secret}
}

func accessTokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func (m *SimpleAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := accessTokenFromRequest(c)
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(token, m.AccessSecret)
		if err != nil || claims == nil {
			c.SetCookie(jwthelp.DeleteCookie("accessToken", "/"))
			c.SetCookie(jwthelp.DeleteCookie("refreshToken", "/"))
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set("user_id", claims.Subject)
		c.Set("username", claims.Username)

		return next(c)
	}
}

// OptionalAuth resolves the viewer identity when a valid token is present but
// lets anonymous requests through.
func (m *SimpleAuth) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if token := accessTokenFromRequest(c); token != "" {
			if claims, err := tokens.AccessClaimsFromToken(token, m.AccessSecret); err == nil && claims != nil {
				c.Set("user_id", claims.Subject)
				c.Set("username", claims.Username)
			}
		}
		return next(c)
	}
}
