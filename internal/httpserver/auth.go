package httpserver

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	jwthelp "github.com/Skotchmaster/vidtube/pkg/jwt"
	"github.com/Skotchmaster/vidtube/pkg/logging"

	"github.com/Skotchmaster/vidtube/internal/service"
	"github.com/Skotchmaster/vidtube/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

// saveUpload spools a multipart file to a temp path so the media store can
// pick it up. Returns "" when the field is absent.
func saveUpload(c echo.Context, field string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "upload-*"+filepath.Ext(fh.Filename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

func removeTemp(paths ...string) {
	for _, p := range paths {
		if p != "" {
			os.Remove(p)
		}
	}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	avatarPath, err := saveUpload(c, "avatar")
	if err != nil {
		l.Error("register_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not read avatar file")
	}
	coverPath, err := saveUpload(c, "coverImage")
	if err != nil {
		removeTemp(avatarPath)
		l.Error("register_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not read cover image file")
	}
	defer removeTemp(avatarPath, coverPath)

	user, err := h.Svc.Register(ctx, service.RegisterInput{
		FullName:       c.FormValue("fullName"),
		Email:          c.FormValue("email"),
		Username:       c.FormValue("username"),
		Password:       c.FormValue("password"),
		AvatarPath:     avatarPath,
		CoverImagePath: coverPath,
	})
	if err != nil {
		return httpError(err)
	}

	return respond(c, http.StatusCreated, user, "user registered successfully")
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	c.SetCookie(jwthelp.CreateCookie("accessToken", res.AccessToken, "/", res.AccessExp))
	c.SetCookie(jwthelp.CreateCookie("refreshToken", res.RefreshToken, "/", res.RefreshExp))

	return respond(c, http.StatusOK, transport.LoginResponse{
		User:         res.User,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	}, "user logged in successfully")
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Logout(ctx, userID); err != nil {
		c.SetCookie(jwthelp.DeleteCookie("accessToken", "/"))
		c.SetCookie(jwthelp.DeleteCookie("refreshToken", "/"))
		return httpError(err)
	}

	c.SetCookie(jwthelp.DeleteCookie("accessToken", "/"))
	c.SetCookie(jwthelp.DeleteCookie("refreshToken", "/"))

	return respond(c, http.StatusOK, nil, "user logged out")
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	refreshToken := ""
	if cookie, err := c.Cookie("refreshToken"); err == nil {
		refreshToken = cookie.Value
	}
	if refreshToken == "" {
		var req transport.RefreshRequest
		if err := c.Bind(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token is required")
	}

	res, err := h.Svc.Refresh(ctx, refreshToken)
	if err != nil {
		return httpError(err)
	}

	c.SetCookie(jwthelp.CreateCookie("accessToken", res.AccessToken, "/", res.AccessExp))
	c.SetCookie(jwthelp.CreateCookie("refreshToken", res.RefreshToken, "/", res.RefreshExp))

	return respond(c, http.StatusOK, transport.TokenPairResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	}, "access token refreshed")
}

func currentUserID(c echo.Context) (uuid.UUID, error) {
	raw, _ := c.Get("user_id").(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}
	return id, nil
}
