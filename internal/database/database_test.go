package database_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/stretchr/testify/assert"
)

func drivers(t *testing.T) map[string]database.Client {
	dir, err := os.MkdirTemp("", "bluewiki-database")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	clients := map[string]database.Client{}
	for _, driver := range []string{"storm", "sqlite"} {
		db, err := database.Open(driver, filepath.Join(dir, driver+".db"))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { db.Close() })
		clients[driver] = db
	}
	return clients
}

func saveArticles(t *testing.T, db database.Client, paths ...string) []*model.Article {
	articles := make([]*model.Article, 0, len(paths))
	for _, path := range paths {
		article := &model.Article{Path: path, Title: filepath.Base(path), Content: "# " + path}
		if err := db.Save(article); err != nil {
			t.Fatal(err)
		}
		articles = append(articles, article)
	}
	return articles
}

func paths(articles []*model.Article) []string {
	paths := make([]string, 0, len(articles))
	for _, article := range articles {
		paths = append(paths, article.Path)
	}
	return paths
}

func TestSave(t *testing.T) {
	for name, db := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			article := &model.Article{Path: "/a", Title: "A"}
			assert.NoError(t, db.Save(article))
			assert.NotZero(t, article.ID)
			assert.NotNil(t, article.CreatedAt)
			assert.NotNil(t, article.UpdatedAt)

			id := article.ID
			article.Title = "AA"
			assert.NoError(t, db.Save(article))
			assert.Equal(t, id, article.ID)

			found, err := db.FindArticle(id)
			assert.NoError(t, err)
			assert.Equal(t, "AA", found.Title)

			assert.NoError(t, db.Delete(found))
			_, err = db.FindArticle(id)
			assert.True(t, db.IsNotFound(err))
		})
	}
}

func TestArticlePathUniqueness(t *testing.T) {
	for name, db := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			saveArticles(t, db, "/unique")

			err := db.Save(&model.Article{Path: "/unique"})
			assert.Error(t, err)
			assert.True(t, db.IsAlreadyExists(err))
			assert.False(t, db.IsNotFound(err))

			articles, err := db.FindArticlesByPath("/unique")
			assert.NoError(t, err)
			assert.Len(t, articles, 1)
		})
	}
}

func TestFindArticlesByPath(t *testing.T) {
	for name, db := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			saveArticles(t, db, "/a", "/a/b", "/ab")

			articles, err := db.FindArticlesByPath("/a")
			assert.NoError(t, err)
			assert.Equal(t, []string{"/a"}, paths(articles))

			articles, err = db.FindArticlesByPath("/nope")
			assert.NoError(t, err)
			assert.Empty(t, articles)
		})
	}
}

func TestFindArticlesByPathPrefix(t *testing.T) {
	for name, db := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			saveArticles(t, db, "/", "/a", "/a/b", "/a/b/c", "/ab", "/c_d", "/c%d")

			articles, err := db.FindArticlesByPathPrefix("/a/")
			assert.NoError(t, err)
			assert.ElementsMatch(t, []string{"/a/b", "/a/b/c"}, paths(articles))

			articles, err = db.FindArticlesByPathPrefix("/")
			assert.NoError(t, err)
			assert.Len(t, articles, 7)

			articles, err = db.FindArticlesByPathPrefix("/c_")
			assert.NoError(t, err)
			assert.Equal(t, []string{"/c_d"}, paths(articles))

			articles, err = db.FindArticlesByPathPrefix("/z/")
			assert.NoError(t, err)
			assert.Empty(t, articles)
		})
	}
}

func TestFindArticles(t *testing.T) {
	for name, db := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			saveArticles(t, db, "/1", "/2", "/3")

			articles, total, err := db.FindArticles(0, 2)
			assert.NoError(t, err)
			assert.Equal(t, 3, total)
			assert.Len(t, articles, 2)

			articles, total, err = db.FindArticles(2, 2)
			assert.NoError(t, err)
			assert.Equal(t, 3, total)
			assert.Len(t, articles, 1)
		})
	}
}

func TestSearchArticles(t *testing.T) {
	for name, db := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, db.Save(&model.Article{Path: "/go", Title: "Gophers", Content: "burrow"}))
			assert.NoError(t, db.Save(&model.Article{Path: "/rust", Title: "Crabs", Content: "Gophers are friends"}))
			assert.NoError(t, db.Save(&model.Article{Path: "/zig", Title: "Lizards", Content: "none"}))

			articles, err := db.SearchArticles("gopher")
			assert.NoError(t, err)
			assert.ElementsMatch(t, []string{"/go", "/rust"}, paths(articles))

			articles, err = db.SearchArticles("100%")
			assert.NoError(t, err)
			assert.Empty(t, articles)
		})
	}
}

func TestTags(t *testing.T) {
	for name, db := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			articles := saveArticles(t, db, "/a", "/b")
			golang := &model.Tag{Name: "golang"}
			assert.NoError(t, db.Save(golang))
			wiki := &model.Tag{Name: "wiki"}
			assert.NoError(t, db.Save(wiki))

			err := db.Save(&model.Tag{Name: "wiki"})
			assert.True(t, db.IsAlreadyExists(err))

			assert.NoError(t, db.Save(&model.ArticleTag{ArticleID: articles[0].ID, TagID: golang.ID}))
			assert.NoError(t, db.Save(&model.ArticleTag{ArticleID: articles[0].ID, TagID: wiki.ID}))
			assert.NoError(t, db.Save(&model.ArticleTag{ArticleID: articles[1].ID, TagID: wiki.ID}))

			tags, err := db.FindTagsByArticleID(articles[0].ID)
			assert.NoError(t, err)
			assert.Len(t, tags, 2)
			assert.Equal(t, "golang", tags[0].Name)

			tagged, err := db.FindArticlesByTag(wiki.ID)
			assert.NoError(t, err)
			assert.ElementsMatch(t, []string{"/a", "/b"}, paths(tagged))

			_, err = db.FindArticleTag(articles[1].ID, golang.ID)
			assert.True(t, db.IsNotFound(err))

			assert.NoError(t, db.DeleteArticleTags(articles[0].ID, 0))
			tags, err = db.FindTagsByArticleID(articles[0].ID)
			assert.NoError(t, err)
			assert.Empty(t, tags)

			found, err := db.FindTagByName("wiki")
			assert.NoError(t, err)
			assert.Equal(t, wiki.ID, found.ID)
		})
	}
}

func TestComments(t *testing.T) {
	for name, db := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			articles := saveArticles(t, db, "/a", "/b")
			assert.NoError(t, db.Save(&model.Comment{ArticleID: articles[0].ID, Content: "first"}))
			assert.NoError(t, db.Save(&model.Comment{ArticleID: articles[0].ID, Content: "second"}))
			assert.NoError(t, db.Save(&model.Comment{ArticleID: articles[1].ID, Content: "other"}))

			comments, total, err := db.FindComments(articles[0].ID, 0, 0)
			assert.NoError(t, err)
			assert.Equal(t, 2, total)
			assert.Equal(t, "first", comments[0].Content)

			_, total, err = db.FindComments(0, 0, 1)
			assert.NoError(t, err)
			assert.Equal(t, 3, total)

			assert.NoError(t, db.DeleteCommentsByArticleID(articles[0].ID))
			_, total, err = db.FindComments(articles[0].ID, 0, 0)
			assert.NoError(t, err)
			assert.Zero(t, total)
		})
	}
}

func TestUsersAndSessions(t *testing.T) {
	for name, db := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			n, err := db.CountUsers()
			assert.NoError(t, err)
			assert.Zero(t, n)

			user := model.NewUser()
			user.Email = "george.abitbol@nowhere.lan"
			user.Phone = "0102030405"
			assert.NoError(t, db.Save(user))

			found, err := db.FindUserByMail(user.Email)
			assert.NoError(t, err)
			assert.Equal(t, user.ID, found.ID)
			found, err = db.FindUserByPhone(user.Phone)
			assert.NoError(t, err)
			assert.Equal(t, user.ID, found.ID)

			session := &model.Session{UserID: user.ID, Token: "token", ExpireAt: time.Now().Add(time.Hour)}
			assert.NoError(t, db.Save(session))
			s, err := db.FindSessionByToken("token")
			assert.NoError(t, err)
			assert.Equal(t, session.ID, s.ID)

			assert.NoError(t, db.DeleteSessionsByUserID(user.ID))
			_, err = db.FindSessionByToken("token")
			assert.True(t, db.IsNotFound(err))
		})
	}
}

func TestSettingsAndCodes(t *testing.T) {
	for name, db := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			_, err := db.FindSetting()
			assert.True(t, db.IsNotFound(err))

			assert.NoError(t, db.Save(&model.Setting{SMTPServer: "smtp.nowhere.lan"}))
			setting, err := db.FindSetting()
			assert.NoError(t, err)
			assert.Equal(t, "smtp.nowhere.lan", setting.SMTPServer)

			now := time.Now().UTC()
			assert.NoError(t, db.Save(&model.VerificationCode{
				Email:    "a@nowhere.lan",
				Purpose:  model.PurposeRegister,
				Code:     "123456",
				ExpireAt: now.Add(-time.Minute),
			}))
			assert.NoError(t, db.Save(&model.VerificationCode{
				Email:    "b@nowhere.lan",
				Purpose:  model.PurposeRegister,
				Code:     "654321",
				ExpireAt: now.Add(time.Hour),
			}))

			assert.NoError(t, db.RevokeExpiredCodes())
			_, err = db.FindVerificationCode("a@nowhere.lan", model.PurposeRegister)
			assert.True(t, db.IsNotFound(err))

			code, err := db.FindVerificationCode("b@nowhere.lan", model.PurposeRegister)
			assert.NoError(t, err)
			assert.Equal(t, "654321", code.Code)

			code.Attempts++
			assert.NoError(t, db.Save(code))
			code, err = db.FindVerificationCode("b@nowhere.lan", model.PurposeRegister)
			assert.NoError(t, err)
			assert.Equal(t, 1, code.Attempts)
		})
	}
}

func TestFiles(t *testing.T) {
	for name, db := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			file := &model.File{Name: "a.png", Path: "uploads/abc.png", Hash: "abc", MimeType: "image/png", Size: 3}
			assert.NoError(t, db.Save(file))

			found, err := db.FindFileByHash("abc")
			assert.NoError(t, err)
			assert.Equal(t, file.ID, found.ID)

			files, total, err := db.FindFiles(0, 10)
			assert.NoError(t, err)
			assert.Equal(t, 1, total)
			assert.Len(t, files, 1)
		})
	}
}

func TestCreators(t *testing.T) {
	for name, db := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			_, err := db.FindCreator(1)
			assert.True(t, db.IsNotFound(err))

			ada := &model.Creator{Name: "Ada", Avatar: "/person.png", UserID: 7}
			assert.NoError(t, db.Save(ada))
			assert.NoError(t, db.Save(&model.Creator{Name: "Grace"}))
			assert.NoError(t, db.Save(&model.Creator{Name: "Barbara"}))

			found, err := db.FindCreator(ada.ID)
			assert.NoError(t, err)
			assert.Equal(t, "Ada", found.Name)

			found, err = db.FindCreatorByUserID(7)
			assert.NoError(t, err)
			assert.Equal(t, ada.ID, found.ID)

			_, err = db.FindCreatorByUserID(8)
			assert.True(t, db.IsNotFound(err))

			creators, total, err := db.FindCreators(1, 10)
			assert.NoError(t, err)
			assert.Equal(t, 3, total)
			if assert.Len(t, creators, 2) {
				assert.Equal(t, "Grace", creators[0].Name)
				assert.Equal(t, "Barbara", creators[1].Name)
			}
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := database.Open("mongo", "whatever")
	assert.EqualError(t, err, "unsupported database driver: mongo")
}
