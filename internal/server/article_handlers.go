package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bluewiki/internal/bwerror"
	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/mdouchement/bluewiki/internal/server/serializer"
	"github.com/mdouchement/bluewiki/internal/server/service"
	"github.com/pkg/errors"
)

// article contains all article handlers.
type article struct {
	db       database.Client
	articles service.ArticleService
}

type tagParams struct {
	Name string `json:"name"`
}

// List returns the articles, newest first.
func (h *article) List(c echo.Context) error {
	skip, limit, page := pagination(c)

	articles, total, err := h.db.FindArticles(skip, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, serializer.Page(articles, total, page, limit))
}

// Search returns the articles whose title or content contains the `q` query param.
func (h *article) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusOK, serializer.Global([]*model.Article{}))
	}

	articles, err := h.db.SearchArticles(q)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, serializer.Global(articles))
}

// Show returns the requested article with its tags.
func (h *article) Show(c echo.Context) error {
	a, err := h.find(c)
	if err != nil {
		return err
	}

	tags, err := h.db.FindTagsByArticleID(a.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, serializer.Article(a, tags))
}

// Create creates an article authored by the current user.
func (h *article) Create(c echo.Context) error {
	var params service.ArticleParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	a, err := h.articles.Create(currentUser(c), params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, serializer.Article(a, nil))
}

// Update updates the requested article.
func (h *article) Update(c echo.Context) error {
	a, err := h.find(c)
	if err != nil {
		return err
	}

	var params service.ArticleParams
	if err = c.Bind(&params); err != nil {
		return err
	}

	a, err = h.articles.Update(currentUser(c), a, params)
	if err != nil {
		return err
	}

	tags, err := h.db.FindTagsByArticleID(a.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, serializer.Article(a, tags))
}

// Delete deletes the requested article with its comments and tag links.
func (h *article) Delete(c echo.Context) error {
	a, err := h.find(c)
	if err != nil {
		return err
	}

	if err = h.articles.Delete(currentUser(c), a); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Tags returns the tags of the requested article.
func (h *article) Tags(c echo.Context) error {
	a, err := h.find(c)
	if err != nil {
		return err
	}

	tags, err := h.db.FindTagsByArticleID(a.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, serializer.Global(tags))
}

// AddTag labels the requested article, the tag is created when needed.
func (h *article) AddTag(c echo.Context) error {
	a, err := h.find(c)
	if err != nil {
		return err
	}

	var params tagParams
	if err = c.Bind(&params); err != nil {
		return err
	}

	tag, err := h.articles.Tag(a, params.Name)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, tag)
}

// RemoveTag removes a tag from the requested article.
func (h *article) RemoveTag(c echo.Context) error {
	a, err := h.find(c)
	if err != nil {
		return err
	}

	tagID, err := paramID(c, "tag_id")
	if err != nil {
		return err
	}

	if err = h.db.DeleteArticleTags(a.ID, tagID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *article) find(c echo.Context) (*model.Article, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}

	a, err := h.db.FindArticle(id)
	if err != nil {
		if h.db.IsNotFound(err) {
			return nil, bwerror.NotFound("Article not found.")
		}
		return nil, errors.Wrap(err, "could not get access to database")
	}
	return a, nil
}
