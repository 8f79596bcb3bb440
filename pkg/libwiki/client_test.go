package libwiki_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/mailer"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/mdouchement/bluewiki/internal/server"
	"github.com/mdouchement/bluewiki/internal/storage"
	"github.com/mdouchement/bluewiki/internal/tree"
	"github.com/mdouchement/bluewiki/pkg/libwiki"
	argon2 "github.com/mdouchement/simple-argon2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestClient(t *testing.T) {
	endpoint, db := setup(t)

	client, err := libwiki.NewDefaultClient(endpoint)
	assert.NoError(t, err)

	version, err := client.Version()
	assert.NoError(t, err)
	assert.Equal(t, "test", version)

	err = client.Login("george@nowhere.lan", "wrong-password")
	if assert.Error(t, err) {
		assert.Equal(t, "Invalid email or password.", err.Error())
		assert.Equal(t, "invalid-auth", err.(*libwiki.WikiError).Tag())
	}

	assert.NoError(t, client.Login("george@nowhere.lan", "password42"))
	session := client.Session()
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "george@nowhere.lan", session.User.Email)
	assert.False(t, session.Expired(time.Now()))

	author, err := db.FindUserByMail("george@nowhere.lan")
	assert.NoError(t, err)
	for _, path := range []string{"/guides/install", "/guides/deploy/docker", "/été/café"} {
		assert.NoError(t, db.Save(&model.Article{
			Path:     path,
			Title:    "Title of " + path,
			Content:  "# " + path,
			AuthorID: author.ID,
		}))
	}

	listing, err := client.Tree("/")
	assert.NoError(t, err)
	assert.Equal(t, "/", listing.Parent)
	assert.Len(t, listing.Folders, 2)
	if assert.Len(t, listing.Pages, 1) {
		assert.Equal(t, "/creator", listing.Pages[0].Path)
	}

	listing, err = client.Siblings("/guides/install")
	assert.NoError(t, err)
	assert.Equal(t, "/guides", listing.Parent)
	if assert.Len(t, listing.Folders, 1) {
		assert.Equal(t, "/guides/deploy", listing.Folders[0].Path)
	}

	article, err := client.Article("/été/café", true)
	assert.NoError(t, err)
	assert.Equal(t, "/été/café", article.Path)
	assert.Contains(t, article.HTML, "<h1")

	_, err = client.Article("/guides", false)
	assert.True(t, libwiki.IsNotFound(err))

	articles, err := client.Search("docker")
	assert.NoError(t, err)
	if assert.Len(t, articles, 1) {
		assert.Equal(t, "/guides/deploy/docker", articles[0].Path)
	}

	assert.NoError(t, client.Logout())
	assert.Empty(t, client.Session().Token)
	assert.Error(t, client.Logout())

	// The revoked session can no longer be used.
	client.SetSession(session)
	err = client.Logout()
	if assert.Error(t, err) {
		assert.Equal(t, http.StatusUnauthorized, err.(*libwiki.WikiError).StatusCode)
	}
}

func TestNewClient_InvalidEndpoint(t *testing.T) {
	_, err := libwiki.NewDefaultClient("wiki.nowhere.lan")
	assert.Error(t, err)
}

func setup(t *testing.T) (string, database.Client) {
	dir := t.TempDir()

	db, err := database.StormOpen(filepath.Join(dir, "bluewiki.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	blobs, err := storage.NewLocal(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatal(err)
	}

	user := model.NewUser()
	user.Name = "George Abitbol"
	user.Email = "george@nowhere.lan"
	user.Phone = "+33 6 00 00 00 00"
	user.Role = model.RoleUser
	user.Password, err = argon2.GenerateFromPasswordString("password42", argon2.Default)
	if err != nil {
		t.Fatal(err)
	}
	user.PasswordUpdatedAt = time.Now().Add(-time.Minute).Unix()
	if err = db.Save(user); err != nil {
		t.Fatal(err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	engine := server.EchoEngine(server.IOC{
		Version:               "test",
		Database:              db,
		Storage:               blobs,
		Mailer:                &mailer.Memory{},
		Logger:                logger,
		Pinned:                tree.DefaultPinned(),
		SigningKey:            []byte("00000000000000000000000000000000"),
		SessionExpirationTime: time.Hour,
	})

	ts := httptest.NewServer(engine)
	t.Cleanup(ts.Close)

	return ts.URL, db
}
