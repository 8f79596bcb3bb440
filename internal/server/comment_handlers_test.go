package server_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/appleboy/gofight/v2"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fastjson"
)

func TestRequestComments(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	author := createUser(ctrl, "george@nowhere.lan", model.RoleUser)
	other := createUser(ctrl, "other@nowhere.lan", model.RoleUser)
	admin := createUser(ctrl, "admin@nowhere.lan", model.RoleAdmin)
	article := createArticle(ctrl, author, "/guides/install")
	another := createArticle(ctrl, author, "/guides/deploy")

	r.POST("/api/comments").SetHeader(bearer(ctrl, other)).SetJSON(gofight.D{
		"article_id": 4242,
		"content":    "Lost",
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
	})

	var id int
	r.POST("/api/comments").SetHeader(bearer(ctrl, other)).SetJSON(gofight.D{
		"article_id": article.ID,
		"content":    "Nice guide",
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusCreated, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		assert.NoError(t, err)
		assert.Equal(t, other.ID, v.GetInt("author_id"))
		assert.Equal(t, article.ID, v.GetInt("article_id"))
		id = v.GetInt("id")
	})

	r.POST("/api/comments").SetHeader(bearer(ctrl, author)).SetJSON(gofight.D{
		"article_id": another.ID,
		"content":    "Elsewhere",
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusCreated, r.Code)
	})

	r.GET(fmt.Sprintf("/api/comments?articleId=%d", article.ID)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		assert.NoError(t, err)
		assert.Equal(t, 1, v.GetInt("total"))

		data := v.GetArray("data")
		if assert.Len(t, data, 1) {
			assert.Equal(t, "Nice guide", string(data[0].GetStringBytes("content")))
		}
	})

	r.GET("/api/comments?articleId=abc").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
	})

	r.PUT(fmt.Sprintf("/api/comments/%d", id)).SetHeader(bearer(ctrl, author)).SetJSON(gofight.D{
		"content": "Hijacked",
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusForbidden, r.Code)
	})

	r.PUT(fmt.Sprintf("/api/comments/%d", id)).SetHeader(bearer(ctrl, other)).SetJSON(gofight.D{
		"content": "Very nice guide",
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		assert.NoError(t, err)
		assert.Equal(t, "Very nice guide", string(v.GetStringBytes("content")))
	})

	r.DELETE(fmt.Sprintf("/api/comments/%d", id)).SetHeader(bearer(ctrl, admin)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNoContent, r.Code)
	})

	r.GET(fmt.Sprintf("/api/comments/%d", id)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"not-found","message":"Comment not found."}}`, r.Body.String())
	})
}

func TestRequestTags(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	user := createUser(ctrl, "george@nowhere.lan", model.RoleUser)
	admin := createUser(ctrl, "admin@nowhere.lan", model.RoleAdmin)

	r.POST("/api/tags").SetHeader(bearer(ctrl, user)).SetJSON(gofight.D{"name": "guides"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusForbidden, r.Code)
	})

	var id int
	r.POST("/api/tags").SetHeader(bearer(ctrl, admin)).SetJSON(gofight.D{"name": " guides "}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusCreated, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		assert.NoError(t, err)
		assert.Equal(t, "guides", string(v.GetStringBytes("name")))
		id = v.GetInt("id")
	})

	r.POST("/api/tags").SetHeader(bearer(ctrl, admin)).SetJSON(gofight.D{"name": "guides"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusConflict, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"tag-taken","message":"This tag already exists."}}`, r.Body.String())
	})

	r.PUT(fmt.Sprintf("/api/tags/%d", id)).SetHeader(bearer(ctrl, admin)).SetJSON(gofight.D{"name": "howto"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
	})

	r.GET("/api/tags").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		assert.NoError(t, err)

		data := v.GetArray("data")
		if assert.Len(t, data, 1) {
			assert.Equal(t, "howto", string(data[0].GetStringBytes("name")))
		}
	})

	r.GET("/api/tags/by-name/missing").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
	})

	r.DELETE(fmt.Sprintf("/api/tags/%d", id)).SetHeader(bearer(ctrl, admin)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNoContent, r.Code)
	})

	r.GET(fmt.Sprintf("/api/tags/%d", id)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
	})
}
