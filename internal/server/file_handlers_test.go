package server_test

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/appleboy/gofight/v2"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fastjson"
)

func TestRequestFiles(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	admin := createUser(ctrl, "admin@nowhere.lan", model.RoleAdmin)
	user := createUser(ctrl, "george@nowhere.lan", model.RoleUser)

	dir := t.TempDir()
	filename := filepath.Join(dir, "notes.txt")
	assert.NoError(t, os.WriteFile(filename, []byte("Hello wiki"), 0600))
	upload := []gofight.UploadFile{{Path: filename, Name: "file"}}

	r.POST("/api/files").SetHeader(bearer(ctrl, user)).SetFileFromPath(upload).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusForbidden, r.Code)
	})

	var id int
	var path string
	r.POST("/api/files").SetHeader(bearer(ctrl, admin)).SetFileFromPath(upload).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusCreated, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		assert.NoError(t, err)
		assert.Equal(t, "notes.txt", string(v.GetStringBytes("name")))
		assert.Equal(t, 10, v.GetInt("size"))
		assert.Equal(t, admin.ID, v.GetInt("uploader_id"))
		assert.Contains(t, string(v.GetStringBytes("mime_type")), "text/plain")

		// sha256 of the content
		hash := string(v.GetStringBytes("hash"))
		assert.Len(t, hash, 64)
		path = string(v.GetStringBytes("path"))
		assert.Equal(t, hash[:2]+"/"+hash+".txt", path)
		id = v.GetInt("id")
	})

	// Same content is deduplicated.
	r.POST("/api/files").SetHeader(bearer(ctrl, admin)).SetFileFromPath(upload).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		assert.NoError(t, err)
		assert.Equal(t, id, v.GetInt("id"))
	})

	r.GET("/api/files").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		assert.NoError(t, err)
		assert.Equal(t, 1, v.GetInt("total"))
	})

	r.GET(fmt.Sprintf("/api/files/%d/raw", id)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.Equal(t, "Hello wiki", r.Body.String())
		assert.Contains(t, r.HeaderMap.Get("Content-Type"), "text/plain")
		assert.Equal(t, `inline; filename=notes.txt`, r.HeaderMap.Get("Content-Disposition"))
	})

	r.DELETE(fmt.Sprintf("/api/files/%d", id)).SetHeader(bearer(ctrl, admin)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNoContent, r.Code)
	})

	r.GET(fmt.Sprintf("/api/files/%d/raw", id)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"not-found","message":"File not found."}}`, r.Body.String())
	})
}

func TestRequestFiles_Empty(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	admin := createUser(ctrl, "admin@nowhere.lan", model.RoleAdmin)

	r.POST("/api/files").SetHeader(bearer(ctrl, admin)).SetForm(gofight.H{"name": "nothing"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"invalid-params","message":"file: cannot be blank."}}`, r.Body.String())
	})
}
