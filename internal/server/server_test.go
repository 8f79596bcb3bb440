package server_test

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/appleboy/gofight/v2"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/mailer"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/mdouchement/bluewiki/internal/server"
	"github.com/mdouchement/bluewiki/internal/storage"
	"github.com/mdouchement/bluewiki/internal/tree"
	argon2 "github.com/mdouchement/simple-argon2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestRequestHome(t *testing.T) {
	engine, _, r, cleanup := setup()
	defer cleanup()

	r.GET("/").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `{"version":"test"}`, r.Body.String())
	})
}

func TestRequestVersion(t *testing.T) {
	engine, _, r, cleanup := setup()
	defer cleanup()

	r.GET("/api/version").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `{"version":"test"}`, r.Body.String())
	})
}

func TestRequestUnknownRoute(t *testing.T) {
	engine, _, r, cleanup := setup()
	defer cleanup()

	r.GET("/api/nowhere").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
		assert.JSONEq(t, `{"error":{"message":"Not Found"}}`, r.Body.String())
	})

	// Unknown paths next to authenticated routes are not answered with 401.
	r.POST("/api/nowhere/deeper").SetJSON(gofight.D{"path": "/a"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
		assert.JSONEq(t, `{"error":{"message":"Not Found"}}`, r.Body.String())
	})
}

func TestRequestRestricted(t *testing.T) {
	engine, _, r, cleanup := setup()
	defer cleanup()

	r.POST("/api/articles").SetJSON(gofight.D{"path": "/a", "title": "A"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"invalid-auth","message":"Invalid login credentials."}}`, r.Body.String())
	})

	r.POST("/api/articles").
		SetHeader(gofight.H{"Authorization": "Bearer not.a.token"}).
		SetJSON(gofight.D{"path": "/a", "title": "A"}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusUnauthorized, r.Code)
		})
}

func setup() (engine *echo.Echo, ctrl server.IOC, r *gofight.RequestConfig, cleanup func()) {
	dir, err := os.MkdirTemp("", "bluewiki-server")
	if err != nil {
		panic(err)
	}

	db, err := database.StormOpen(filepath.Join(dir, "bluewiki.db"))
	if err != nil {
		panic(err)
	}

	blobs, err := storage.NewLocal(filepath.Join(dir, "uploads"))
	if err != nil {
		panic(err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	ctrl = server.IOC{
		Version:               "test",
		Database:              db,
		Storage:               blobs,
		Mailer:                &mailer.Memory{},
		Logger:                logger,
		NoRegistration:        false,
		Pinned:                tree.DefaultPinned(),
		SigningKey:            []byte("00000000000000000000000000000000"),
		SessionExpirationTime: 24 * time.Hour,
	}
	engine = server.EchoEngine(ctrl)

	return engine, ctrl, gofight.New(), func() {
		db.Close()
		os.RemoveAll(dir)
	}
}

func createUser(ctrl server.IOC, email, role string) *model.User {
	var err error

	user := model.NewUser()
	user.Name = "George Abitbol"
	user.Email = email
	user.Phone = email
	user.Role = role
	user.Password, err = argon2.GenerateFromPasswordString("password42", argon2.Default)
	if err != nil {
		panic(err)
	}
	user.PasswordUpdatedAt = time.Now().Add(-time.Minute).Unix()

	if err = ctrl.Database.Save(user); err != nil {
		panic(err)
	}
	return user
}

func bearer(ctrl server.IOC, user *model.User) gofight.H {
	return gofight.H{
		"Authorization": "Bearer " + server.TokenFromUser(ctrl, user),
	}
}

func createArticle(ctrl server.IOC, author *model.User, path string) *model.Article {
	article := &model.Article{
		Path:     path,
		Title:    "Title of " + path,
		Content:  "# " + path,
		AuthorID: author.ID,
	}
	if err := ctrl.Database.Save(article); err != nil {
		panic(err)
	}
	return article
}
