package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bluewiki/internal/bwerror"
	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/mdouchement/bluewiki/internal/server/serializer"
	"github.com/mdouchement/bluewiki/internal/server/service"
	"github.com/pkg/errors"
)

// user contains all user management handlers.
type user struct {
	db    database.Client
	users service.UserService
}

// List returns the registered users.
func (h *user) List(c echo.Context) error {
	skip, limit, page := pagination(c)

	users, total, err := h.db.FindUsers(skip, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, serializer.Page(serializer.Users(users), total, page, limit))
}

// Show returns the requested user.
func (h *user) Show(c echo.Context) error {
	u, err := h.find(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, serializer.User(u))
}

// Update updates the requested user.
func (h *user) Update(c echo.Context) error {
	u, err := h.find(c)
	if err != nil {
		return err
	}

	var params service.UpdateUserParams
	if err = c.Bind(&params); err != nil {
		return err
	}

	render, err := h.users.Update(currentUser(c), u, params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, render)
}

// Delete deletes the requested user and its sessions.
func (h *user) Delete(c echo.Context) error {
	u, err := h.find(c)
	if err != nil {
		return err
	}

	if err = h.users.Delete(u); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// find returns the user of the URL when the current user is allowed to access it.
func (h *user) find(c echo.Context) (*model.User, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}

	current := currentUser(c)
	if current.ID != id && !current.IsAdmin() {
		return nil, bwerror.Forbidden("You can only access your own account.")
	}

	u, err := h.db.FindUser(id)
	if err != nil {
		if h.db.IsNotFound(err) {
			return nil, bwerror.NotFound("User not found.")
		}
		return nil, errors.Wrap(err, "could not get access to database")
	}
	return u, nil
}
