package server_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/appleboy/gofight/v2"
	"github.com/mdouchement/bluewiki/internal/mailer"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/mdouchement/bluewiki/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fastjson"
)

func TestRequestLogin(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	user := createUser(ctrl, "george@nowhere.lan", model.RoleUser)

	r.POST("/api/auth/login").SetJSON(gofight.D{
		"email": "george@nowhere.lan",
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnprocessableEntity, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"invalid-params","message":"password: cannot be blank."}}`, r.Body.String())
	})

	r.POST("/api/auth/login").SetJSON(gofight.D{
		"email":    "george@nowhere.lan",
		"password": "wrong-password",
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"invalid-auth","message":"Invalid email or password."}}`, r.Body.String())
	})

	r.POST("/api/auth/login").SetJSON(gofight.D{
		"email":    "nobody@nowhere.lan",
		"password": "password42",
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"invalid-auth","message":"Invalid email or password."}}`, r.Body.String())
	})

	var token string
	r.POST("/api/auth/login").SetJSON(gofight.D{
		"email":    "george@nowhere.lan",
		"password": "password42",
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		assert.NoError(t, err)
		assert.Equal(t, user.ID, v.GetInt("user", "id"))
		assert.Equal(t, "george@nowhere.lan", string(v.GetStringBytes("user", "email")))
		assert.False(t, v.Exists("user", "password"))
		assert.True(t, v.Exists("expire_at"))

		token = string(v.GetStringBytes("token"))
		assert.NotEmpty(t, token)
		assert.Contains(t, r.HeaderMap.Get("Set-Cookie"), "auth_token="+token)
	})

	gofight.New().GET("/api/auth/status").
		SetHeader(gofight.H{"Authorization": "Bearer " + token}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusOK, r.Code)

			v, err := fastjson.Parse(r.Body.String())
			assert.NoError(t, err)
			assert.True(t, v.GetBool("authenticated"))
			assert.Equal(t, user.ID, v.GetInt("user", "id"))
		})

	gofight.New().GET("/api/auth/status").
		SetCookie(gofight.H{"auth_token": token}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusOK, r.Code)

			v, err := fastjson.Parse(r.Body.String())
			assert.NoError(t, err)
			assert.True(t, v.GetBool("authenticated"))
		})
}

func TestRequestStatus_Anonymous(t *testing.T) {
	engine, _, r, cleanup := setup()
	defer cleanup()

	r.GET("/api/auth/status").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `{"authenticated":false}`, r.Body.String())
	})
}

func TestRequestLogout(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	user := createUser(ctrl, "george@nowhere.lan", model.RoleUser)
	header := bearer(ctrl, user)

	r.POST("/api/auth/logout").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNoContent, r.Code)
		assert.Contains(t, r.HeaderMap.Get("Set-Cookie"), "auth_token=;")
	})

	// The session is revoked.
	r.POST("/api/auth/logout").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
	})

	r.GET("/api/auth/status").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
	})
}

func TestRequestRegister(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	createUser(ctrl, "george@nowhere.lan", model.RoleUser)

	r.POST("/api/users/register").SetJSON(gofight.D{
		"name":     "Dave",
		"email":    "dave-nowhere.lan",
		"phone":    "+33 6 00 00 00 00",
		"password": "password42",
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnprocessableEntity, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"invalid-params","message":"email: must be a valid email address."}}`, r.Body.String())
	})

	r.POST("/api/users/register").SetJSON(gofight.D{
		"name":     "George",
		"email":    "george@nowhere.lan",
		"phone":    "+33 6 00 00 00 00",
		"password": "password42",
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusConflict, r.Code)
	})

	r.POST("/api/users/register").SetJSON(gofight.D{
		"name":     "Dave",
		"email":    "dave@nowhere.lan",
		"phone":    "+33 6 00 00 00 00",
		"password": "password42",
		"role":     model.RoleAdmin,
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusCreated, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		assert.NoError(t, err)
		assert.Equal(t, "dave@nowhere.lan", string(v.GetStringBytes("user", "email")))
		assert.Equal(t, model.RoleUser, string(v.GetStringBytes("user", "role")))
		assert.NotEmpty(t, string(v.GetStringBytes("token")))
	})

	// Codes are only sent when SMTP is configured.
	r.POST("/api/users/register/code").SetJSON(gofight.D{
		"email": "eve@nowhere.lan",
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusConflict, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"mail-not-configured","message":"Registration codes are not enabled on this wiki."}}`, r.Body.String())
	})
}

func TestRequestRegister_WithCode(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	assert.NoError(t, ctrl.Database.Save(&model.Setting{
		SMTPServer: "smtp.nowhere.lan",
		SMTPPort:   587,
		SMTPEmail:  "wiki@nowhere.lan",
	}))
	outbox := ctrl.Mailer.(*mailer.Memory)

	params := gofight.D{
		"name":     "Dave",
		"email":    "dave@nowhere.lan",
		"phone":    "+33 6 00 00 00 00",
		"password": "password42",
	}

	r.POST("/api/users/register").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"invalid-code","message":"Invalid or expired verification code."}}`, r.Body.String())
	})

	r.POST("/api/users/register/code").SetJSON(gofight.D{
		"email": "dave@nowhere.lan",
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusAccepted, r.Code)
	})

	message, ok := outbox.Last()
	if !assert.True(t, ok) {
		return
	}
	assert.Equal(t, "dave@nowhere.lan", message.To)
	code := extractCode(message.Text)

	params["code"] = code
	r.POST("/api/users/register").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusCreated, r.Code)
	})

	// One-shot
	params["email"] = "dave2@nowhere.lan"
	params["phone"] = "+33 6 00 00 00 01"
	r.POST("/api/users/register").SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
	})
}

func TestRequestRegister_Disabled(t *testing.T) {
	_, ctrl, r, cleanup := setup()
	defer cleanup()

	ctrl.NoRegistration = true
	engine := server.EchoEngine(ctrl)

	r.POST("/api/users/register").SetJSON(gofight.D{
		"name":     "Dave",
		"email":    "dave@nowhere.lan",
		"phone":    "+33 6 00 00 00 00",
		"password": "password42",
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
		assert.JSONEq(t, `{"error":{"message":"Not Found"}}`, r.Body.String())
	})

	r.POST("/api/users/register/code").SetJSON(gofight.D{
		"email": "dave@nowhere.lan",
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
	})
}

func TestRequestUsers(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	admin := createUser(ctrl, "admin@nowhere.lan", model.RoleAdmin)
	user := createUser(ctrl, "george@nowhere.lan", model.RoleUser)
	other := createUser(ctrl, "other@nowhere.lan", model.RoleUser)

	r.GET("/api/users").SetHeader(bearer(ctrl, user)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusForbidden, r.Code)
	})

	r.GET("/api/users").SetHeader(bearer(ctrl, admin)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		assert.NoError(t, err)
		assert.Equal(t, 3, v.GetInt("total"))
	})

	r.GET(fmt.Sprintf("/api/users/%d", other.ID)).SetHeader(bearer(ctrl, user)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusForbidden, r.Code)
	})

	r.PUT(fmt.Sprintf("/api/users/%d", user.ID)).SetHeader(bearer(ctrl, user)).SetJSON(gofight.D{
		"role": model.RoleAdmin,
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusForbidden, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"forbidden","message":"Only administrators can change roles."}}`, r.Body.String())
	})

	r.PUT(fmt.Sprintf("/api/users/%d", user.ID)).SetHeader(bearer(ctrl, user)).SetJSON(gofight.D{
		"name":             "George",
		"current_password": "password42",
		"new_password":     "password43",
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		assert.NoError(t, err)
		assert.Equal(t, "George", string(v.GetStringBytes("name")))
	})

	r.POST("/api/auth/login").SetJSON(gofight.D{
		"email":    "george@nowhere.lan",
		"password": "password43",
	}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
	})

	r.DELETE(fmt.Sprintf("/api/users/%d", other.ID)).SetHeader(bearer(ctrl, admin)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNoContent, r.Code)
	})

	_, err := ctrl.Database.FindUser(other.ID)
	assert.True(t, ctrl.Database.IsNotFound(err))
}

func extractCode(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 5 {
		return ""
	}
	return fields[4]
}
