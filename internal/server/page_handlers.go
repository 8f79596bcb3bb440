package server

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bluewiki/internal/bwerror"
	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/markdown"
	"github.com/mdouchement/bluewiki/internal/server/serializer"
	"github.com/mdouchement/bluewiki/internal/tree"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const byPathRoute = "/api/articles/by-path"

// page contains the handlers navigating the wiki tree.
type page struct {
	db       database.Client
	resolver *tree.Resolver
	renderer *markdown.Renderer
	logger   logrus.FieldLogger
}

// Children lists the folders and pages directly below the `path` query param.
func (h *page) Children(c echo.Context) error {
	listing, err := h.resolver.ListChildren(c.QueryParam("path"))
	if err != nil {
		return h.error(err)
	}

	return c.JSON(http.StatusOK, listing)
}

// Siblings lists the folders and pages next to the `page` query param.
func (h *page) Siblings(c echo.Context) error {
	listing, err := h.resolver.ListSiblings(c.QueryParam("page"))
	if err != nil {
		return h.error(err)
	}

	return c.JSON(http.StatusOK, listing)
}

// ByPath returns the article stored at the path following the route.
// `?render=html` adds the rendered content.
func (h *page) ByPath(c echo.Context) error {
	article, err := h.resolver.ResolveExact(wildcardPath(c))
	if err != nil {
		return h.error(err)
	}

	tags, err := h.db.FindTagsByArticleID(article.ID)
	if err != nil {
		return h.error(&tree.UnavailableError{Op: "tags", Path: article.Path, Err: err})
	}

	render := serializer.Article(article, tags)
	if c.QueryParam("render") == "html" {
		render["html"], err = h.renderer.Render(article.Content)
		if err != nil {
			return err
		}
	}

	return c.JSON(http.StatusOK, render)
}

// Preview renders the Markdown body of the request.
func (h *page) Preview(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return errors.Wrap(err, "could not read body")
	}

	html, err := h.renderer.Render(string(body))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"html": html,
	})
}

// wildcardPath returns the URL-decoded path following the by-path route.
func wildcardPath(c echo.Context) string {
	escaped := strings.TrimPrefix(c.Request().URL.EscapedPath(), byPathRoute)
	if path, err := url.PathUnescape(escaped); err == nil {
		return path
	}
	return "/" + c.Param("*")
}

func (h *page) error(err error) error {
	switch {
	case err == tree.ErrNotFound:
		return bwerror.NotFound("No article at this path.")
	case errors.Cause(err) == tree.ErrInvalidPath:
		return bwerror.NewWithTagCode(http.StatusBadRequest, "invalid-path", "Invalid path.")
	case tree.IsUnavailable(err):
		h.logger.WithError(err).Error("tree query failed")
		return bwerror.Unavailable("The content store is unavailable, please retry later.")
	}
	return err
}
