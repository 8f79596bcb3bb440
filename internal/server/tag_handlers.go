package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bluewiki/internal/bwerror"
	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/mdouchement/bluewiki/internal/server/serializer"
	"github.com/pkg/errors"
)

// tag contains all tag handlers.
type tag struct {
	db database.Client
}

// List returns the tags sorted by name.
func (h *tag) List(c echo.Context) error {
	skip, limit, page := pagination(c)

	tags, total, err := h.db.FindTags(skip, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, serializer.Page(tags, total, page, limit))
}

// Show returns the requested tag.
func (h *tag) Show(c echo.Context) error {
	t, err := h.find(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, t)
}

// ByName returns the tag with the given name and its articles.
func (h *tag) ByName(c echo.Context) error {
	t, err := h.db.FindTagByName(c.Param("name"))
	if err != nil {
		if h.db.IsNotFound(err) {
			return bwerror.NotFound("Tag not found.")
		}
		return errors.Wrap(err, "could not get access to database")
	}

	articles, err := h.db.FindArticlesByTag(t.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"tag":      t,
		"articles": articles,
	})
}

// Create creates a new tag.
func (h *tag) Create(c echo.Context) error {
	var params tagParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	t := &model.Tag{}
	if err := h.save(t, params.Name); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

// Update renames the requested tag.
func (h *tag) Update(c echo.Context) error {
	t, err := h.find(c)
	if err != nil {
		return err
	}

	var params tagParams
	if err = c.Bind(&params); err != nil {
		return err
	}

	if err = h.save(t, params.Name); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

// Delete deletes the requested tag and unlinks it from the articles.
func (h *tag) Delete(c echo.Context) error {
	t, err := h.find(c)
	if err != nil {
		return err
	}

	if err = h.db.DeleteArticleTags(0, t.ID); err != nil {
		return err
	}
	if err = h.db.Delete(t); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *tag) save(t *model.Tag, name string) error {
	t.Name = strings.TrimSpace(name)
	if t.Name == "" {
		return bwerror.NewWithTagCode(http.StatusUnprocessableEntity, "invalid-params", "name: cannot be blank.")
	}

	if err := h.db.Save(t); err != nil {
		if h.db.IsAlreadyExists(err) {
			return bwerror.NewWithTagCode(http.StatusConflict, "tag-taken", "This tag already exists.")
		}
		return errors.Wrap(err, "could not persist tag")
	}
	return nil
}

func (h *tag) find(c echo.Context) (*model.Tag, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}

	t, err := h.db.FindTag(id)
	if err != nil {
		if h.db.IsNotFound(err) {
			return nil, bwerror.NotFound("Tag not found.")
		}
		return nil, errors.Wrap(err, "could not get access to database")
	}
	return t, nil
}
