package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avdeyev/webshop/internal/repo"
	"github.com/avdeyev/webshop/internal/util"
)

type UserHandler struct {
	Users repo.UserStore
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	user, err := h.Users.ByID(c.Request().Context(), id)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetUsers(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	users, total, err := h.Users.List(c.Request().Context(), offset, limit)
	if err != nil {
		return storeError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": users,
		"meta": pageMeta(page, limit, offset, total),
	})
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Users.Delete(c.Request().Context(), id); err != nil {
		return storeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
