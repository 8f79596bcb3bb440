package server

import (
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bluewiki/internal/bwerror"
	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/mdouchement/bluewiki/internal/server/serializer"
	"github.com/pkg/errors"
)

// creator contains all creator handlers.
type creator struct {
	db database.Client
}

type creatorParams struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Bio    string `json:"bio"`
	UserID int    `json:"user_id"`
}

// Validate implements validation.Validatable.
func (p creatorParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.Avatar, validation.Length(0, 2048), is.RequestURI),
		validation.Field(&p.Bio, validation.Length(0, 2000)),
		validation.Field(&p.UserID, validation.Min(0)),
	)
}

// List returns the creators sorted by id.
func (h *creator) List(c echo.Context) error {
	skip, limit, page := pagination(c)

	creators, total, err := h.db.FindCreators(skip, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, serializer.Page(creators, total, page, limit))
}

// Show returns the requested creator to its linked user or an administrator.
func (h *creator) Show(c echo.Context) error {
	m, err := h.owned(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, m)
}

// Create creates a new creator.
func (h *creator) Create(c echo.Context) error {
	var params creatorParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	m := &model.Creator{}
	if err := h.save(m, params); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

// Update edits the requested creator.
// Only an administrator can change the linked user.
func (h *creator) Update(c echo.Context) error {
	m, err := h.owned(c)
	if err != nil {
		return err
	}

	var params creatorParams
	if err = c.Bind(&params); err != nil {
		return err
	}

	if params.UserID != m.UserID && !currentUser(c).IsAdmin() {
		return bwerror.Forbidden("Only an administrator can change the linked user.")
	}

	if err = h.save(m, params); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// Delete deletes the requested creator.
func (h *creator) Delete(c echo.Context) error {
	m, err := h.find(c)
	if err != nil {
		return err
	}

	if err = h.db.Delete(m); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *creator) save(m *model.Creator, params creatorParams) error {
	if params.UserID != 0 {
		if _, err := h.db.FindUser(params.UserID); err != nil {
			if h.db.IsNotFound(err) {
				return bwerror.NotFound("User not found.")
			}
			return errors.Wrap(err, "could not get access to database")
		}

		other, err := h.db.FindCreatorByUserID(params.UserID)
		switch {
		case err == nil && other.ID != m.ID:
			return bwerror.NewWithTagCode(http.StatusConflict, "creator-taken", "This user is already linked to a creator.")
		case err != nil && !h.db.IsNotFound(err):
			return errors.Wrap(err, "could not get access to database")
		}
	}

	m.Name = strings.TrimSpace(params.Name)
	m.Avatar = params.Avatar
	m.Bio = params.Bio
	m.UserID = params.UserID

	return errors.Wrap(h.db.Save(m), "could not persist creator")
}

// owned returns the requested creator if the current user is linked to it or is an administrator.
func (h *creator) owned(c echo.Context) (*model.Creator, error) {
	m, err := h.find(c)
	if err != nil {
		return nil, err
	}

	user := currentUser(c)
	if m.UserID != user.ID && !user.IsAdmin() {
		return nil, bwerror.Forbidden("Only the linked user or an administrator can access this creator.")
	}
	return m, nil
}

func (h *creator) find(c echo.Context) (*model.Creator, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}

	m, err := h.db.FindCreator(id)
	if err != nil {
		if h.db.IsNotFound(err) {
			return nil, bwerror.NotFound("Creator not found.")
		}
		return nil, errors.Wrap(err, "could not get access to database")
	}
	return m, nil
}
