package server

import (
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bluewiki/internal/bwerror"
	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/mdouchement/bluewiki/internal/server/serializer"
	"github.com/pkg/errors"
)

// comment contains all comment handlers.
type comment struct {
	db database.Client
}

type commentParams struct {
	ArticleID int    `json:"article_id"`
	Content   string `json:"content"`
}

// Validate implements validation.Validatable.
func (p commentParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Content, validation.Required, validation.Length(1, 10000)),
	)
}

// List returns the comments, oldest first.
// The `articleId` query param restricts the comments to one article.
func (h *comment) List(c echo.Context) error {
	skip, limit, page := pagination(c)

	var articleID int
	if v := c.QueryParam("articleId"); v != "" {
		var err error
		if articleID, err = strconv.Atoi(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid articleId.")
		}
	}

	comments, total, err := h.db.FindComments(articleID, skip, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, serializer.Page(comments, total, page, limit))
}

// Show returns the requested comment.
func (h *comment) Show(c echo.Context) error {
	m, err := h.find(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, m)
}

// Create comments an article.
func (h *comment) Create(c echo.Context) error {
	var params commentParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	if _, err := h.db.FindArticle(params.ArticleID); err != nil {
		if h.db.IsNotFound(err) {
			return bwerror.NotFound("Article not found.")
		}
		return errors.Wrap(err, "could not get access to database")
	}

	m := &model.Comment{
		ArticleID: params.ArticleID,
		AuthorID:  currentUser(c).ID,
		Content:   params.Content,
	}
	if err := h.db.Save(m); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, m)
}

// Update edits the requested comment.
func (h *comment) Update(c echo.Context) error {
	m, err := h.owned(c)
	if err != nil {
		return err
	}

	var params commentParams
	if err = c.Bind(&params); err != nil {
		return err
	}

	m.Content = params.Content
	if err = h.db.Save(m); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, m)
}

// Delete deletes the requested comment.
func (h *comment) Delete(c echo.Context) error {
	m, err := h.owned(c)
	if err != nil {
		return err
	}

	if err = h.db.Delete(m); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// owned returns the requested comment if the current user is its author or an administrator.
func (h *comment) owned(c echo.Context) (*model.Comment, error) {
	m, err := h.find(c)
	if err != nil {
		return nil, err
	}

	user := currentUser(c)
	if m.AuthorID != user.ID && !user.IsAdmin() {
		return nil, bwerror.Forbidden("Only the author or an administrator can modify this comment.")
	}
	return m, nil
}

func (h *comment) find(c echo.Context) (*model.Comment, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}

	m, err := h.db.FindComment(id)
	if err != nil {
		if h.db.IsNotFound(err) {
			return nil, bwerror.NotFound("Comment not found.")
		}
		return nil, errors.Wrap(err, "could not get access to database")
	}
	return m, nil
}
