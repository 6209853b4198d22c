package httpserver

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/vidtube/internal/transport"
)

func (h *AuthHTTP) ChannelProfile(c echo.Context) error {
	username := c.Param("username")

	// Anonymous viewers get the profile with isSubscribed false.
	viewerID := uuid.Nil
	if raw, ok := c.Get("user_id").(string); ok {
		if id, err := uuid.Parse(raw); err == nil {
			viewerID = id
		}
	}

	profile, err := h.Svc.ChannelProfile(c.Request().Context(), username, viewerID)
	if err != nil {
		return httpError(err)
	}

	return respond(c, http.StatusOK, profile, "channel profile fetched")
}

func (h *AuthHTTP) SearchChannels(c echo.Context) error {
	query := c.QueryParam("q")

	from, _ := strconv.Atoi(c.QueryParam("from"))
	size, err := strconv.Atoi(c.QueryParam("size"))
	if err != nil || size <= 0 || size > 100 {
		size = 20
	}

	total, docs, err := h.Svc.SearchChannels(c.Request().Context(), query, from, size)
	if err != nil {
		return httpError(err)
	}

	return respond(c, http.StatusOK, transport.SearchResponse{
		Total:    total,
		Channels: docs,
	}, "channels fetched")
}
