package server

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/mailer"
	"github.com/mdouchement/bluewiki/internal/markdown"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/mdouchement/bluewiki/internal/server/middlewares"
	"github.com/mdouchement/bluewiki/internal/server/service"
	"github.com/mdouchement/bluewiki/internal/server/session"
	"github.com/mdouchement/bluewiki/internal/storage"
	"github.com/mdouchement/bluewiki/internal/tree"
	"github.com/mdouchement/bluewiki/internal/verification"
	"github.com/sirupsen/logrus"
)

// An IOC is an Iversion Of Control pattern used to init the server package.
type IOC struct {
	Version        string
	Database       database.Client
	Storage        storage.Storage
	Mailer         mailer.Mailer
	Logger         *logrus.Logger
	NoRegistration bool
	// Tree params
	Pinned []tree.Entry
	// JWT params
	SigningKey []byte
	// Session params
	SessionExpirationTime time.Duration
	// Upload params
	MaxUploadSize int64
}

// EchoEngine instantiates the wep server.
func EchoEngine(ctrl IOC) *echo.Echo {
	if ctrl.Logger == nil {
		ctrl.Logger = logrus.StandardLogger()
	}
	if ctrl.MaxUploadSize == 0 {
		ctrl.MaxUploadSize = 32 << 20
	}

	engine := echo.New()
	engine.HideBanner = true
	engine.HidePort = true
	engine.Use(middleware.Recover())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))
	engine.Use(middleware.Gzip())

	engine.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${status}] ${method} ${uri} (${bytes_in}) ${latency_human}\n",
		Output: ctrl.Logger.WriterLevel(logrus.InfoLevel),
	}))
	engine.Binder = middlewares.NewBinder()
	// Error handler
	engine.HTTPErrorHandler = middlewares.HTTPErrorHandler(ctrl.Logger)

	////////////
	// Router //
	////////////

	sessions := session.NewManager(
		ctrl.Database,
		ctrl.SigningKey,
		ctrl.SessionExpirationTime,
	)
	codes := verification.New(ctrl.Database, ctrl.Mailer, ctrl.Logger)
	resolver := tree.NewResolver(ctrl.Database, ctrl.Pinned, ctrl.Logger)
	renderer := markdown.New(false)

	// Auth middlewares are attached per route so unknown paths stay 404.
	router := engine.Group("/api")
	optional := middlewares.OptionalSession(sessions)
	restricted := middlewares.Session(sessions)
	admin := middlewares.Admin()

	// generic handlers
	//
	version := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"version": ctrl.Version,
		})
	}
	engine.GET("/", version)
	router.GET("/version", version)

	//
	// auth & user handlers
	//
	users := service.NewUser(ctrl.Database, sessions, codes)
	auth := &auth{
		db:       ctrl.Database,
		sessions: sessions,
		users:    users,
		codes:    codes,
	}
	router.POST("/auth/login", auth.Login)
	router.POST("/auth/logout", auth.Logout, restricted)
	router.GET("/auth/status", auth.Status, optional)
	register, registerCode := auth.Register, auth.RegisterCode
	if ctrl.NoRegistration {
		// Explicit 404, otherwise `/users/:id` answers 405.
		register, registerCode = echo.NotFoundHandler, echo.NotFoundHandler
	}
	router.POST("/users/register/code", registerCode)
	router.POST("/users/register", register)

	user := &user{
		db:    ctrl.Database,
		users: users,
	}
	router.GET("/users", user.List, restricted, admin)
	router.GET("/users/:id", user.Show, restricted)
	router.PUT("/users/:id", user.Update, restricted)
	router.DELETE("/users/:id", user.Delete, restricted)

	//
	// tree handlers
	//
	page := &page{
		db:       ctrl.Database,
		resolver: resolver,
		renderer: renderer,
		logger:   ctrl.Logger,
	}
	router.GET("/tree", page.Children)
	router.GET("/pages/path", page.Siblings)
	router.GET("/articles/by-path/*", page.ByPath)
	router.GET("/articles/by-path", page.ByPath)
	router.POST("/preview", page.Preview)

	//
	// article handlers
	//
	article := &article{
		db:       ctrl.Database,
		articles: service.NewArticle(ctrl.Database),
	}
	router.GET("/articles", article.List)
	router.GET("/articles/search", article.Search)
	router.GET("/articles/:id", article.Show)
	router.POST("/articles", article.Create, restricted)
	router.PUT("/articles/:id", article.Update, restricted)
	router.DELETE("/articles/:id", article.Delete, restricted)
	router.GET("/articles/:id/tags", article.Tags)
	router.POST("/articles/:id/tags", article.AddTag, restricted)
	router.DELETE("/articles/:id/tags/:tag_id", article.RemoveTag, restricted)

	//
	// tag handlers
	//
	tag := &tag{
		db: ctrl.Database,
	}
	router.GET("/tags", tag.List)
	router.GET("/tags/by-name/:name", tag.ByName)
	router.GET("/tags/:id", tag.Show)
	router.POST("/tags", tag.Create, restricted, admin)
	router.PUT("/tags/:id", tag.Update, restricted, admin)
	router.DELETE("/tags/:id", tag.Delete, restricted, admin)

	//
	// comment handlers
	//
	comment := &comment{
		db: ctrl.Database,
	}
	router.GET("/comments", comment.List)
	router.GET("/comments/:id", comment.Show)
	router.POST("/comments", comment.Create, restricted)
	router.PUT("/comments/:id", comment.Update, restricted)
	router.DELETE("/comments/:id", comment.Delete, restricted)

	//
	// file handlers
	//
	file := &file{
		db:      ctrl.Database,
		storage: ctrl.Storage,
		maxSize: ctrl.MaxUploadSize,
	}
	router.GET("/files", file.List)
	router.GET("/files/:id", file.Show)
	router.GET("/files/:id/raw", file.Raw)
	router.POST("/files", file.Upload, restricted, admin)
	router.DELETE("/files/:id", file.Delete, restricted, admin)

	//
	// creator handlers
	//
	creator := &creator{
		db: ctrl.Database,
	}
	router.GET("/creators", creator.List)
	router.GET("/creators/:id", creator.Show, restricted)
	router.POST("/creators", creator.Create, restricted, admin)
	router.PUT("/creators/:id", creator.Update, restricted)
	router.DELETE("/creators/:id", creator.Delete, restricted, admin)

	//
	// setting handlers
	//
	setting := &setting{
		db:       ctrl.Database,
		firstUse: service.NewFirstUse(ctrl.Database, sessions, ctrl.Logger),
		codes:    codes,
	}
	router.GET("/first-use", setting.FirstUseStatus)
	router.POST("/first-use", setting.FirstUse)
	router.GET("/settings", setting.Show, restricted, admin)
	router.POST("/settings", setting.Save, optional)
	router.POST("/settings/test-email", setting.TestEmail, optional)
	router.POST("/settings/verify-code", setting.VerifyCode)

	return engine
}

// PrintRoutes prints the Echo engin exposed routes.
func PrintRoutes(e *echo.Echo) {
	ignored := map[string]bool{
		"":   true,
		".":  true,
		"/*": true,
	}

	routes := e.Routes()
	sort.Slice(routes, func(i int, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})

	fmt.Println("Routes:")
	for _, route := range routes {
		if ignored[route.Path] {
			continue
		}
		fmt.Printf("%6s %s\n", route.Method, route.Path)
	}
}

func currentUser(c echo.Context) *model.User {
	user, ok := c.Get(middlewares.CurrentUserContextKey).(*model.User)
	if ok {
		return user
	}
	return nil
}

func currentSession(c echo.Context) *model.Session {
	session, ok := c.Get(middlewares.CurrentSessionContextKey).(*model.Session)
	if ok {
		return session
	}
	return nil
}

// pagination returns the skip, limit and page from the query params.
func pagination(c echo.Context) (skip, limit, page int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	switch {
	case limit < 1:
		limit = 20
	case limit > 100:
		limit = 100
	}

	return (page - 1) * limit, limit, page
}

func paramID(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name+".")
	}
	return id, nil
}
