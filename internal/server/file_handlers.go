package server

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bluewiki/internal/bwerror"
	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/mdouchement/bluewiki/internal/server/serializer"
	"github.com/mdouchement/bluewiki/internal/storage"
	"github.com/pkg/errors"
)

// file contains all uploaded file handlers.
type file struct {
	db      database.Client
	storage storage.Storage
	maxSize int64
}

// List returns the uploaded files, newest first.
func (h *file) List(c echo.Context) error {
	skip, limit, page := pagination(c)

	files, total, err := h.db.FindFiles(skip, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, serializer.Page(files, total, page, limit))
}

// Show returns the metadata of the requested file.
func (h *file) Show(c echo.Context) error {
	m, err := h.find(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, m)
}

// Raw streams the content of the requested file.
func (h *file) Raw(c echo.Context) error {
	m, err := h.find(c)
	if err != nil {
		return err
	}

	r, err := h.storage.Get(c.Request().Context(), m.Path)
	if err != nil {
		if err == storage.ErrNotFound {
			return bwerror.NotFound("File content not found.")
		}
		return err
	}
	defer r.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("inline", map[string]string{"filename": m.Name}))
	return c.Stream(http.StatusOK, m.MimeType, r)
}

// Upload stores the `file` field of the multipart form.
// Uploading an already known content returns the existing file.
func (h *file) Upload(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return bwerror.NewWithTagCode(http.StatusBadRequest, "invalid-params", "file: cannot be blank.")
	}
	if header.Size > h.maxSize {
		return bwerror.NewWithTagCode(http.StatusRequestEntityTooLarge, "too-large", fmt.Sprintf("file: must not exceed %d bytes.", h.maxSize))
	}

	f, err := header.Open()
	if err != nil {
		return errors.Wrap(err, "could not open uploaded file")
	}
	defer f.Close()

	hash := sha256.New()
	if _, err = io.Copy(hash, f); err != nil {
		return errors.Wrap(err, "could not read uploaded file")
	}
	sum := hex.EncodeToString(hash.Sum(nil))

	existing, err := h.db.FindFileByHash(sum)
	if err == nil {
		return c.JSON(http.StatusOK, existing)
	}
	if !h.db.IsNotFound(err) {
		return errors.Wrap(err, "could not get access to database")
	}

	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "could not rewind uploaded file")
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	mimeType := header.Header.Get(echo.HeaderContentType)
	if mimeType == "" || mimeType == echo.MIMEOctetStream {
		if t := mime.TypeByExtension(ext); t != "" {
			mimeType = t
		}
	}
	if mimeType == "" {
		mimeType = echo.MIMEOctetStream
	}

	m := &model.File{
		Name:       filepath.Base(header.Filename),
		Path:       sum[:2] + "/" + sum + ext,
		Hash:       sum,
		MimeType:   mimeType,
		Size:       header.Size,
		UploaderID: currentUser(c).ID,
	}

	if err = h.storage.Put(c.Request().Context(), m.Path, f, m.Size, m.MimeType); err != nil {
		return err
	}
	if err = h.db.Save(m); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, m)
}

// Delete deletes the requested file and its content.
func (h *file) Delete(c echo.Context) error {
	m, err := h.find(c)
	if err != nil {
		return err
	}

	if err = h.storage.Remove(c.Request().Context(), m.Path); err != nil {
		return err
	}
	if err = h.db.Delete(m); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *file) find(c echo.Context) (*model.File, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}

	m, err := h.db.FindFile(id)
	if err != nil {
		if h.db.IsNotFound(err) {
			return nil, bwerror.NotFound("File not found.")
		}
		return nil, errors.Wrap(err, "could not get access to database")
	}
	return m, nil
}
