package httpserver

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/vidtube/internal/models"
	"github.com/Skotchmaster/vidtube/internal/transport"
)

type imageUpdateFunc func(context.Context, uuid.UUID, string) (*models.User, error)

func (h *AuthHTTP) CurrentUser(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	user, err := h.Svc.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}

	return respond(c, http.StatusOK, user, "current user fetched")
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req transport.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.ChangePassword(c.Request().Context(), userID, req.OldPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		return httpError(err)
	}

	return respond(c, http.StatusOK, nil, "password changed successfully")
}

func (h *AuthHTTP) UpdateAccount(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req transport.UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.UpdateAccount(c.Request().Context(), userID, req.FullName, req.Email)
	if err != nil {
		return httpError(err)
	}

	return respond(c, http.StatusOK, user, "account details updated")
}

func (h *AuthHTTP) UpdateAvatar(c echo.Context) error {
	return h.updateImage(c, "avatar", h.Svc.UpdateAvatar)
}

func (h *AuthHTTP) UpdateCoverImage(c echo.Context) error {
	return h.updateImage(c, "coverImage", h.Svc.UpdateCoverImage)
}

func (h *AuthHTTP) updateImage(c echo.Context, field string, update imageUpdateFunc) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	path, err := saveUpload(c, field)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not read uploaded file")
	}
	defer removeTemp(path)

	user, err := update(c.Request().Context(), userID, path)
	if err != nil {
		return httpError(err)
	}

	return respond(c, http.StatusOK, user, field+" updated")
}
